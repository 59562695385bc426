package room

import (
	"context"
	"log/slog"

	"ctchen222/minimax-tictactoe/internal/events"
	"ctchen222/minimax-tictactoe/internal/game"
	"ctchen222/minimax-tictactoe/internal/player"
	"ctchen222/minimax-tictactoe/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// computerMove plays the computer's reply once the thinking delay is over.
func (r *Room) computerMove(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.computerMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	r.thinking = false
	board := r.game.Board
	turn := r.game.CurrentTurn
	r.mu.Unlock()

	if turn != game.PlayerO {
		return
	}

	cell, err := r.selector.NextMove(ctx, board)
	if err != nil {
		slog.ErrorContext(ctx, "Computer could not select a move", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer could not select a move")
		return
	}

	r.mu.Lock()
	err = r.game.Move(cell, game.PlayerO)
	r.mu.Unlock()
	if err != nil {
		slog.ErrorContext(ctx, "Computer move rejected", "room.id", r.ID, "move.cell", cell, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer move rejected")
		return
	}
	span.SetAttributes(attribute.Int("move.cell", cell))

	r.afterMove(ctx)
}

// afterMove persists the game, tells the player, and either ends the game
// or hands the turn to the computer.
func (r *Room) afterMove(ctx context.Context) {
	r.mu.Lock()
	over := r.game.IsOver()
	r.thinking = !over && r.game.CurrentTurn == game.PlayerO
	r.mu.Unlock()

	r.save(ctx)
	r.sendUpdate(ctx)
	if over {
		r.finish(ctx)
	}
}

// finish announces the result to the player and to the rest of the system.
func (r *Room) finish(ctx context.Context) {
	r.mu.Lock()
	outcome := r.game.Outcome
	moves := r.game.Moves
	playerID := r.player.ID
	r.mu.Unlock()

	slog.InfoContext(ctx, "Game over", "room.id", r.ID, "player.id", playerID, "game.outcome", outcome)
	r.send(ctx, proto.TypeGameOver, proto.NewGameOverMessage(outcome))
	r.publish(ctx, events.TypeGameOver, events.GameOverPayload{
		RoomID:   r.ID,
		PlayerID: playerID,
		Outcome:  outcome,
		Moves:    moves,
	})
}

func (r *Room) save(ctx context.Context) {
	r.mu.Lock()
	g := *r.game
	r.mu.Unlock()

	if err := r.gameRepo.Save(ctx, r.ID, &g); err != nil {
		slog.ErrorContext(ctx, "Failed to save game", "room.id", r.ID, "error", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save game")
	}
}

func (r *Room) sendUpdate(ctx context.Context) {
	r.mu.Lock()
	msg := proto.NewUpdateMessage(r.game, r.thinking)
	r.mu.Unlock()

	r.send(ctx, proto.TypeUpdate, msg)
}

// sendState sends the mark assignment and the full game to the player.
func (r *Room) sendState(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.sendState", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	assignment := &proto.PlayerAssignmentMessage{
		Type:     proto.TypeAssignment,
		PlayerID: r.player.ID,
		Mark:     game.PlayerX,
	}
	over := r.game.IsOver()
	outcome := r.game.Outcome
	r.mu.Unlock()

	r.send(ctx, proto.TypeAssignment, assignment)
	r.sendUpdate(ctx)
	if over {
		r.send(ctx, proto.TypeGameOver, proto.NewGameOverMessage(outcome))
	}
}

// handleReattach swaps in a reconnecting player's connection.
func (r *Room) handleReattach(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.handleReattach", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	old := r.player
	replaceLive := old != p && old.Conn != nil && old.Status == player.StatusConnected
	r.player = p
	r.mu.Unlock()

	if replaceLive {
		old.Conn.Close()
	}

	r.wg.Add(1)
	go r.ReadPump(p)

	if err := r.playerRepo.UpdateConnectionStatus(ctx, p.ID, player.StatusConnected); err != nil {
		slog.ErrorContext(ctx, "Failed to set player status to connected", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to set player status to connected")
	}
	r.publish(ctx, events.TypePlayerReconnected, events.PlayerReconnectedPayload{
		RoomID:   r.ID,
		PlayerID: p.ID,
	})
	slog.InfoContext(ctx, "Player reattached to room", "player.id", p.ID, "room.id", r.ID)

	r.sendState(ctx)
}
