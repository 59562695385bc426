package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ctchen222/minimax-tictactoe/internal/events"
	"ctchen222/minimax-tictactoe/internal/game"
	"ctchen222/minimax-tictactoe/internal/hub/types"
	"ctchen222/minimax-tictactoe/internal/player"
	"ctchen222/minimax-tictactoe/internal/repository"

	"go.opentelemetry.io/otel"
)

const (
	heartbeatInterval = 10 * time.Second
)

var tracer = otel.Tracer("room")

//go:generate mockgen -destination=mocks/mock_move_selector.go -package=mocks . MoveSelector

// MoveSelector picks the computer's move for a board.
type MoveSelector interface {
	NextMove(ctx context.Context, board game.Board) (int, error)
}

// Room runs one human-vs-computer game. All game changes happen on the
// room's run goroutine.
type Room struct {
	ID         string
	gameRepo   repository.GameRepository
	playerRepo repository.PlayerRepository
	publisher  events.Publisher
	selector   MoveSelector
	thinkDelay time.Duration

	// mu guards player and game, and serializes writes to the connection.
	mu       sync.Mutex
	player   *player.Player
	game     *game.Game
	thinking bool
	// restarted asks run to start the thinking delay over.
	restarted bool

	incomingMoves chan *types.PlayerMove
	reattach      chan *player.Player
	Done          chan struct{}
	closeOnce     sync.Once
	wg            sync.WaitGroup
}

// NewRoom creates a room for p playing g.
func NewRoom(id string, p *player.Player, g *game.Game, gameRepo repository.GameRepository, playerRepo repository.PlayerRepository, publisher events.Publisher, selector MoveSelector, thinkDelay time.Duration) *Room {
	return &Room{
		ID:            id,
		gameRepo:      gameRepo,
		playerRepo:    playerRepo,
		publisher:     publisher,
		selector:      selector,
		thinkDelay:    thinkDelay,
		player:        p,
		game:          g,
		incomingMoves: make(chan *types.PlayerMove, 10),
		reattach:      make(chan *player.Player),
		Done:          make(chan struct{}),
	}
}

// Start sends the opening state to the player and launches the room's goroutines.
func (r *Room) Start() {
	ctx := context.Background()

	r.mu.Lock()
	p := r.player
	r.mu.Unlock()

	r.wg.Add(2)
	go r.ReadPump(p)
	go r.run(ctx)
}

// Reattach hands a reconnecting player's new connection to the room.
// It reports false when the room has already been closed.
func (r *Room) Reattach(p *player.Player) bool {
	select {
	case r.reattach <- p:
		return true
	case <-r.Done:
		return false
	}
}

// Close stops the room and waits for its goroutines to exit.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.Done)
		r.mu.Lock()
		if r.player != nil && r.player.Conn != nil {
			r.player.Conn.Close()
		}
		r.mu.Unlock()
	})
	r.wg.Wait()
}

// run is the main loop of the room.
func (r *Room) run(ctx context.Context) {
	defer r.wg.Done()

	pingTicker := time.NewTicker(heartbeatInterval)
	defer pingTicker.Stop()

	r.mu.Lock()
	r.thinking = r.game.CurrentTurn == game.PlayerO
	r.mu.Unlock()
	r.sendState(ctx)

	var think <-chan time.Time
	for {
		thinking, restarted := r.thinkState()
		if restarted {
			think = nil
		}
		if thinking {
			if think == nil {
				think = time.After(r.thinkDelay)
			}
		} else {
			think = nil
		}

		select {
		case <-r.Done:
			slog.Info("Room run goroutine stopping.", "room.id", r.ID)
			return

		case move := <-r.incomingMoves:
			r.HandleMessage(move.Player, move.Message)

		case <-think:
			think = nil
			r.computerMove(ctx)

		case p := <-r.reattach:
			r.handleReattach(ctx, p)

		case <-pingTicker.C:
			r.ping()
		}
	}
}

// thinkState reports whether the computer is to move and consumes a pending restart.
func (r *Room) thinkState() (thinking, restarted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	restarted = r.restarted
	r.restarted = false
	return r.thinking, restarted
}
