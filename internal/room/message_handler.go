package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"ctchen222/minimax-tictactoe/internal/game"
	"ctchen222/minimax-tictactoe/internal/player"
	"ctchen222/minimax-tictactoe/internal/validator"
	"ctchen222/minimax-tictactoe/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errMissingCell = errors.New("move requires a cell")

// HandleMessage handles a message from the player. It acts as a dispatcher.
func (r *Room) HandleMessage(p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(context.Background(), "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	stale := r.player != p || p.Status == player.StatusDisconnected
	r.mu.Unlock()
	if stale {
		slog.WarnContext(ctx, "ignoring message from stale connection", "player.id", p.ID)
		span.SetStatus(codes.Error, "Message from stale connection")
		return
	}

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.send(ctx, proto.TypeError, proto.NewErrorMessage("malformed message"))
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.send(ctx, proto.TypeError, proto.NewErrorMessage(validator.Describe(err)))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		r.handleMove(ctx, p, &message)
	case proto.TypeRestart:
		r.handleRestart(ctx, p)
	}
}

// handleMove applies the player's move and schedules the computer's reply.
func (r *Room) handleMove(ctx context.Context, p *player.Player, message *proto.ClientToServerMessage) {
	ctx, span := tracer.Start(ctx, "room.handleMove", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	if message.Cell == nil {
		span.RecordError(errMissingCell)
		span.SetStatus(codes.Error, "Missing cell")
		r.send(ctx, proto.TypeError, proto.NewErrorMessage(errMissingCell.Error()))
		return
	}
	span.SetAttributes(attribute.Int("move.cell", *message.Cell))

	r.mu.Lock()
	err := r.game.Move(*message.Cell, game.PlayerX)
	r.mu.Unlock()
	if err != nil {
		slog.WarnContext(ctx, "invalid move from player", "player.id", p.ID, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		r.send(ctx, proto.TypeError, proto.NewErrorMessage(err.Error()))
		return
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	r.afterMove(ctx)
}

// handleRestart starts a new game with the same first turn.
func (r *Room) handleRestart(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.handleRestart", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	r.game.Reset()
	r.thinking = r.game.CurrentTurn == game.PlayerO
	r.restarted = true
	r.mu.Unlock()

	slog.InfoContext(ctx, "Player restarted the game", "player.id", p.ID, "room.id", r.ID)
	r.save(ctx)
	r.sendUpdate(ctx)
}
