package room

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/minimax-tictactoe/internal/events"
	"ctchen222/minimax-tictactoe/internal/hub/types"
	"ctchen222/minimax-tictactoe/internal/player"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// send writes message to the player if they are connected.
func (r *Room) send(ctx context.Context, messageType string, message any) {
	ctx, span := tracer.Start(ctx, "room.send", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", messageType),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.player
	if p.Status != player.StatusConnected || p.Conn == nil {
		return
	}
	if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error writing message to player")
	}
}

func (r *Room) ping() {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.player
	if p.Status != player.StatusConnected || p.Conn == nil {
		return
	}
	if err := p.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		slog.Warn("Failed to send ping to player, assuming disconnect", "player.id", p.ID, "error", err)
	}
}

// ReadPump pumps messages from the player's connection to the room's incomingMoves channel.
func (r *Room) ReadPump(p *player.Player) {
	defer r.wg.Done()

	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	defer func() {
		p.Conn.Close()
		r.handleDisconnect(ctx, p)
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Player connection error")
			return
		}
		select {
		case r.incomingMoves <- &types.PlayerMove{Player: p, Message: msg}:
		case <-r.Done:
			return
		}
	}
}

// handleDisconnect marks p as gone unless the room was closed or a newer
// connection has already replaced it.
func (r *Room) handleDisconnect(ctx context.Context, p *player.Player) {
	select {
	case <-r.Done:
		return
	default:
	}

	r.mu.Lock()
	current := r.player == p && p.Status == player.StatusConnected
	if current {
		p.Disconnect()
	}
	r.mu.Unlock()
	if !current {
		return
	}

	ctx, span := tracer.Start(ctx, "room.handleDisconnect", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	if err := r.playerRepo.UpdateConnectionStatus(ctx, p.ID, player.StatusDisconnected); err != nil {
		slog.ErrorContext(ctx, "Failed to set player status to disconnected", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to set player status to disconnected")
	}

	r.publish(ctx, events.TypePlayerDisconnected, events.PlayerDisconnectedPayload{
		RoomID:   r.ID,
		PlayerID: p.ID,
	})
	slog.InfoContext(ctx, "Player disconnected. Updated status and published event.", "player.id", p.ID)
}

// publish emits a global event, logging failures.
func (r *Room) publish(ctx context.Context, eventType string, payload any) {
	if r.publisher == nil {
		return
	}
	event, err := events.New(eventType, payload)
	if err == nil {
		err = r.publisher.Publish(ctx, event)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "event.type", eventType, "room.id", r.ID, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}
