package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ctchen222/minimax-tictactoe/internal/game"

	"github.com/go-redis/redis/v8"
)

//go:generate mockgen -source=game_repository.go -destination=mocks/mock_game_repository.go -package=mocks

var ErrGameNotFound = errors.New("game not found")

// Game hash fields.
const (
	FieldBoard     = "board"
	FieldNextTurn  = "next_turn"
	FieldFirstTurn = "first_turn"
	FieldMoves     = "moves"
	FieldLastMove  = "last_move"
	FieldStatus    = "status"
)

// GameRepository defines the interface for game data operations.
// Only the live game of a room is kept; finished games are overwritten on restart.
type GameRepository interface {
	Save(ctx context.Context, roomID string, g *game.Game) error
	FindByID(ctx context.Context, roomID string) (*game.Game, error)
	Delete(ctx context.Context, roomID string) error
}

type redisGameRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewGameRepository creates a new Redis-based GameRepository. Saved games
// expire after ttl without activity; zero keeps them forever.
func NewGameRepository(rdb *redis.Client, ttl time.Duration) GameRepository {
	return &redisGameRepository{rdb: rdb, ttl: ttl}
}

func roomKey(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

// Save writes the full game state of a room.
func (r *redisGameRepository) Save(ctx context.Context, roomID string, g *game.Game) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Save")
	defer span.End()

	boardJSON, err := json.Marshal(g.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	status := "in_progress"
	if g.IsOver() {
		status = "finished"
	}

	key := roomKey(roomID)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			FieldBoard, boardJSON,
			FieldNextTurn, string(g.CurrentTurn),
			FieldFirstTurn, string(g.FirstTurn),
			FieldMoves, g.Moves,
			FieldLastMove, g.LastMove,
			FieldStatus, status,
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save game in redis: %w", err)
	}
	return nil
}

// FindByID loads the game of a room. The outcome is recomputed from the board.
func (r *redisGameRepository) FindByID(ctx context.Context, roomID string) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID")
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, roomKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game state from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: room %s", ErrGameNotFound, roomID)
	}

	var board game.Board
	if err := json.Unmarshal([]byte(data[FieldBoard]), &board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}

	moves, err := strconv.Atoi(data[FieldMoves])
	if err != nil {
		return nil, fmt.Errorf("failed to parse moves: %w", err)
	}
	lastMove, err := strconv.Atoi(data[FieldLastMove])
	if err != nil {
		return nil, fmt.Errorf("failed to parse last move: %w", err)
	}

	return &game.Game{
		Board:       board,
		CurrentTurn: game.Mark(data[FieldNextTurn]),
		FirstTurn:   game.Mark(data[FieldFirstTurn]),
		Outcome:     game.Evaluate(board),
		Moves:       moves,
		LastMove:    lastMove,
	}, nil
}

// Delete removes the game of a room.
func (r *redisGameRepository) Delete(ctx context.Context, roomID string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete")
	defer span.End()

	return r.rdb.Del(ctx, roomKey(roomID)).Err()
}
