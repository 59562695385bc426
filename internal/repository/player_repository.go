package repository

import (
	"context"
	"fmt"

	"ctchen222/minimax-tictactoe/internal/player"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

//go:generate mockgen -source=player_repository.go -destination=mocks/mock_player_repository.go -package=mocks

var tracer = otel.Tracer("repository")

// PlayerRepository defines the interface for player data operations.
type PlayerRepository interface {
	FindForReconnection(ctx context.Context, id string) (roomID string, status player.PlayerStatus, err error)
	UpdateConnectionStatus(ctx context.Context, id string, status player.PlayerStatus) error
	UpdateForSession(ctx context.Context, id, roomID string) error
	SetOffline(ctx context.Context, id string) error
}

type redisPlayerRepository struct {
	rdb *redis.Client
}

// NewPlayerRepository creates a new Redis-based PlayerRepository.
func NewPlayerRepository(rdb *redis.Client) PlayerRepository {
	return &redisPlayerRepository{
		rdb: rdb,
	}
}

func playerKey(id string) string {
	return fmt.Sprintf("player:%s", id)
}

// FindForReconnection retrieves the room a player was last playing in.
func (r *redisPlayerRepository) FindForReconnection(ctx context.Context, id string) (string, player.PlayerStatus, error) {
	ctx, span := tracer.Start(ctx, "PlayerRepository.FindForReconnection")
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return "", "", err
	}
	return data["room_id"], player.PlayerStatus(data["connection_status"]), nil
}

// UpdateConnectionStatus updates only the connection status of a player.
func (r *redisPlayerRepository) UpdateConnectionStatus(ctx context.Context, id string, status player.PlayerStatus) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.UpdateConnectionStatus")
	defer span.End()

	return r.rdb.HSet(ctx, playerKey(id), "connection_status", string(status)).Err()
}

// UpdateForSession records the room a player is playing in.
func (r *redisPlayerRepository) UpdateForSession(ctx context.Context, id, roomID string) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.UpdateForSession")
	defer span.End()

	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, playerKey(id), "room_id", roomID)
	pipe.HSet(ctx, playerKey(id), "status", "in_game")
	pipe.HSet(ctx, playerKey(id), "connection_status", string(player.StatusConnected))
	_, err := pipe.Exec(ctx)
	return err
}

// SetOffline marks a player as offline, typically when their room is closed.
func (r *redisPlayerRepository) SetOffline(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.SetOffline")
	defer span.End()

	return r.rdb.HSet(ctx, playerKey(id), "status", "offline").Err()
}
