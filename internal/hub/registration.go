package hub

import (
	"context"
	"errors"
	"log/slog"

	"ctchen222/minimax-tictactoe/internal/game"
	"ctchen222/minimax-tictactoe/internal/player"
	"ctchen222/minimax-tictactoe/internal/repository"
	"ctchen222/minimax-tictactoe/internal/room"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleRegistration seats p: back into their live room, into a room rebuilt
// from the saved game, or into a brand new game.
func (h *Hub) handleRegistration(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("player.id", p.ID),
	))
	defer span.End()

	roomID, status, err := h.playerRepo.FindForReconnection(ctx, p.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to look up previous room", "player.id", p.ID, "error", err)
		span.RecordError(err)
		roomID = ""
	}

	if roomID != "" {
		span.SetAttributes(attribute.String("room.id", roomID), attribute.String("player.status", string(status)))
		if existing, ok := h.localRooms[roomID]; ok {
			if existing.Reattach(p) {
				slog.InfoContext(ctx, "Reconnected player to existing local room", "player.id", p.ID, "room.id", roomID)
				return
			}
			delete(h.localRooms, roomID)
		}

		g, err := h.gameRepo.FindByID(ctx, roomID)
		switch {
		case err == nil:
			slog.InfoContext(ctx, "Restoring saved game for player", "player.id", p.ID, "room.id", roomID)
			h.startRoom(ctx, roomID, p, g)
			return
		case errors.Is(err, repository.ErrGameNotFound):
			slog.InfoContext(ctx, "Saved game expired, starting a new one", "player.id", p.ID, "room.id", roomID)
		default:
			slog.ErrorContext(ctx, "Failed to load saved game", "room.id", roomID, "error", err)
			span.RecordError(err)
		}
	}

	roomID = uuid.New().String()
	g := game.NewGame(game.ChooseFirstTurn(h.opts.FirstTurn))
	if err := h.gameRepo.Save(ctx, roomID, g); err != nil {
		slog.ErrorContext(ctx, "Failed to save new game", "room.id", roomID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save new game")
	}
	h.startRoom(ctx, roomID, p, g)
}

func (h *Hub) startRoom(ctx context.Context, roomID string, p *player.Player, g *game.Game) {
	if err := h.playerRepo.UpdateForSession(ctx, p.ID, roomID); err != nil {
		slog.ErrorContext(ctx, "Failed to update player session", "player.id", p.ID, "room.id", roomID, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}

	r := room.NewRoom(roomID, p, g, h.gameRepo, h.playerRepo, h.publisher, h.selector, h.opts.ThinkDelay)
	h.localRooms[roomID] = r
	r.Start()

	slog.InfoContext(ctx, "Room started", "room.id", roomID, "player.id", p.ID, "game.first", g.FirstTurn)
}
