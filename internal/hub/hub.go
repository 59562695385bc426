package hub

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/minimax-tictactoe/internal/events"
	"ctchen222/minimax-tictactoe/internal/hub/types"
	"ctchen222/minimax-tictactoe/internal/repository"
	"ctchen222/minimax-tictactoe/internal/room"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("hub")

// Options tunes how the hub runs games.
type Options struct {
	ThinkDelay     time.Duration
	FirstTurn      string
	ReconnectGrace time.Duration
	MeterProvider  metric.MeterProvider
}

// Hub seats players in rooms and cleans up after them.
type Hub struct {
	rdb        *redis.Client
	gameRepo   repository.GameRepository
	playerRepo repository.PlayerRepository
	publisher  events.Publisher
	selector   room.MoveSelector
	opts       Options

	localRooms map[string]*room.Room
	register   chan *types.RegistrationRequest

	gamesFinished metric.Int64Counter
}

// NewHub creates a new hub. rdb may be nil, in which case no global events are consumed.
func NewHub(rdb *redis.Client, gameRepo repository.GameRepository, playerRepo repository.PlayerRepository, publisher events.Publisher, selector room.MoveSelector, opts Options) *Hub {
	if opts.MeterProvider == nil {
		opts.MeterProvider = otel.GetMeterProvider()
	}
	gamesFinished, err := opts.MeterProvider.Meter("hub").Int64Counter("games.finished",
		metric.WithDescription("Finished games by outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &Hub{
		rdb:           rdb,
		gameRepo:      gameRepo,
		playerRepo:    playerRepo,
		publisher:     publisher,
		selector:      selector,
		opts:          opts,
		localRooms:    make(map[string]*room.Room),
		register:      make(chan *types.RegistrationRequest),
		gamesFinished: gamesFinished,
	}
}

// Run starts the hub and blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.runEventSubscriber(ctx)
	}

	cleanupTicker := time.NewTicker(h.cleanupInterval())
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case req := <-h.register:
			regCtx := req.Ctx
			if regCtx == nil {
				regCtx = ctx
			}
			h.handleRegistration(regCtx, req.Player)

		case <-cleanupTicker.C:
			h.cleanupRooms(ctx)
		}
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}

func (h *Hub) cleanupInterval() time.Duration {
	if h.opts.ReconnectGrace < 2*time.Second {
		return time.Second
	}
	return h.opts.ReconnectGrace / 2
}

// cleanupRooms closes rooms whose player has been gone longer than the grace period.
func (h *Hub) cleanupRooms(ctx context.Context) {
	for roomID, r := range h.localRooms {
		lastSeen, gone := r.IdleSince()
		if !gone || time.Since(lastSeen) <= h.opts.ReconnectGrace {
			continue
		}

		playerID := r.PlayerID()
		slog.InfoContext(ctx, "Player exceeded reconnection grace period. Closing room.", "player.id", playerID, "room.id", roomID)
		r.Close()
		delete(h.localRooms, roomID)

		if err := h.playerRepo.SetOffline(ctx, playerID); err != nil {
			slog.ErrorContext(ctx, "Failed to set player offline", "player.id", playerID, "error", err)
		}
	}
}

func (h *Hub) closeAll() {
	for roomID, r := range h.localRooms {
		r.Close()
		delete(h.localRooms, roomID)
	}
	slog.Info("Hub stopped, all rooms closed")
}
