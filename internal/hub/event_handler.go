package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/minimax-tictactoe/internal/events"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) runEventSubscriber(ctx context.Context) {
	slog.InfoContext(ctx, "Event subscriber started", "channel", events.EventsChannel)
	pubsub := h.rdb.Subscribe(ctx, events.EventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleEvent(ctx, msg.Payload)
		}
	}
}

// handleEvent consumes one message from the events channel.
func (h *Hub) handleEvent(ctx context.Context, raw string) {
	ctx, span := tracer.Start(ctx, "hub.handleEvent", trace.WithAttributes(
		attribute.String("event.channel", events.EventsChannel),
	))
	defer span.End()

	var event events.Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		slog.ErrorContext(ctx, "Could not unmarshal global event", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not unmarshal global event")
		return
	}
	span.SetAttributes(attribute.String("event.type", event.Type))

	switch event.Type {
	case events.TypeGameOver:
		var payload events.GameOverPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			slog.ErrorContext(ctx, "Could not unmarshal game_over payload", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Could not unmarshal game_over payload")
			return
		}
		if h.gamesFinished != nil {
			h.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(payload.Outcome))))
		}
		slog.InfoContext(ctx, "Received game_over event", "room.id", payload.RoomID, "game.outcome", payload.Outcome, "game.moves", payload.Moves)

	case events.TypePlayerDisconnected:
		var payload events.PlayerDisconnectedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			slog.ErrorContext(ctx, "Could not unmarshal player_disconnected payload", "error", err)
			span.RecordError(err)
			return
		}
		slog.InfoContext(ctx, "Received player_disconnected event", "player.id", payload.PlayerID, "room.id", payload.RoomID)

	case events.TypePlayerReconnected:
		var payload events.PlayerReconnectedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			slog.ErrorContext(ctx, "Could not unmarshal player_reconnected payload", "error", err)
			span.RecordError(err)
			return
		}
		slog.InfoContext(ctx, "Received player_reconnected event", "player.id", payload.PlayerID, "room.id", payload.RoomID)

	default:
		slog.WarnContext(ctx, "Unknown global event", "event.type", event.Type)
	}
}
