package events

import (
	"context"
	"encoding/json"
	"fmt"

	"ctchen222/minimax-tictactoe/internal/game"

	"github.com/go-redis/redis/v8"
)

//go:generate mockgen -source=events.go -destination=mocks/mock_publisher.go -package=mocks

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeGameOver           = "game_over"
	TypePlayerDisconnected = "player_disconnected"
	TypePlayerReconnected  = "player_reconnected"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GameOverPayload is the payload for the "game_over" event.
type GameOverPayload struct {
	RoomID   string       `json:"room_id"`
	PlayerID string       `json:"player_id"`
	Outcome  game.Outcome `json:"outcome"`
	Moves    int          `json:"moves"`
}

// PlayerDisconnectedPayload is the payload for the "player_disconnected" event.
type PlayerDisconnectedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// PlayerReconnectedPayload is the payload for the "player_reconnected" event.
type PlayerReconnectedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// New wraps payload into an Event of the given type.
func New(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}

// Publisher emits events to whoever listens on the events channel.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher publishes events on a Redis Pub/Sub channel.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a Publisher backed by rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends event on EventsChannel.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
