package room

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"ctchen222/minimax-tictactoe/internal/bot"
	"ctchen222/minimax-tictactoe/internal/events"
	eventmocks "ctchen222/minimax-tictactoe/internal/events/mocks"
	"ctchen222/minimax-tictactoe/internal/game"
	"ctchen222/minimax-tictactoe/internal/player"
	"ctchen222/minimax-tictactoe/internal/repository/mocks"
	roommocks "ctchen222/minimax-tictactoe/internal/room/mocks"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	X = game.PlayerX
	O = game.PlayerO
	E = game.None
)

var errConnClosed = errors.New("connection closed")

// fakeConn is an in-memory player.Connection.
type fakeConn struct {
	mu        sync.Mutex
	reads     chan []byte
	done      chan struct{}
	closeOnce sync.Once
	written   [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan []byte, 10), done: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-c.reads:
		return websocket.TextMessage, msg, nil
	case <-c.done:
		return 0, nil, errConnClosed
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	if messageType != websocket.TextMessage {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// sentMessage covers every field the server sends.
type sentMessage struct {
	Type     string       `json:"type"`
	Mark     game.Mark    `json:"mark"`
	Reason   string       `json:"reason"`
	Board    *game.Board  `json:"board"`
	Next     game.Mark    `json:"next"`
	Outcome  game.Outcome `json:"outcome"`
	Thinking bool         `json:"thinking"`
	Result   string       `json:"result"`
}

func (c *fakeConn) messages(t *testing.T) []sentMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentMessage, 0, len(c.written))
	for _, data := range c.written {
		var m sentMessage
		require.NoError(t, json.Unmarshal(data, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) last(t *testing.T, msgType string) (sentMessage, bool) {
	msgs := c.messages(t)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == msgType {
			return msgs[i], true
		}
	}
	return sentMessage{}, false
}

type roomFixture struct {
	room       *Room
	conn       *fakeConn
	player     *player.Player
	gameRepo   *mocks.MockGameRepository
	playerRepo *mocks.MockPlayerRepository
	publisher  *eventmocks.MockPublisher
}

func newRoomFixture(t *testing.T, g *game.Game) *roomFixture {
	t.Helper()
	return newRoomFixtureWithDelay(t, g, 5*time.Millisecond)
}

func newRoomFixtureWithDelay(t *testing.T, g *game.Game, thinkDelay time.Duration) *roomFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &roomFixture{
		conn:       newFakeConn(),
		gameRepo:   mocks.NewMockGameRepository(ctrl),
		playerRepo: mocks.NewMockPlayerRepository(ctrl),
		publisher:  eventmocks.NewMockPublisher(ctrl),
	}
	f.player = player.NewPlayer("player-1", f.conn)
	f.gameRepo.EXPECT().Save(gomock.Any(), "room-1", gomock.Any()).Return(nil).AnyTimes()
	f.room = NewRoom("room-1", f.player, g, f.gameRepo, f.playerRepo, f.publisher, bot.NewEngine(), thinkDelay)
	t.Cleanup(f.room.Close)
	return f
}

func (f *roomFixture) sendMessage(msg string) {
	f.conn.reads <- []byte(msg)
}

func TestRoom_StartSendsAssignmentAndBoard(t *testing.T) {
	f := newRoomFixture(t, game.NewGame(X))
	f.room.Start()

	require.Eventually(t, func() bool { return len(f.conn.messages(t)) >= 2 }, time.Second, 5*time.Millisecond)
	msgs := f.conn.messages(t)
	assert.Equal(t, "assignment", msgs[0].Type)
	assert.Equal(t, X, msgs[0].Mark)
	assert.Equal(t, "update", msgs[1].Type)
	assert.Equal(t, X, msgs[1].Next)
	assert.Equal(t, game.InProgress, msgs[1].Outcome)
	assert.False(t, msgs[1].Thinking)
}

func TestRoom_ComputerRepliesAfterPlayerMove(t *testing.T) {
	f := newRoomFixture(t, game.NewGame(X))
	f.room.Start()

	f.sendMessage(`{"type":"move","cell":4}`)

	require.Eventually(t, func() bool { return f.room.Snapshot().Moves == 2 }, time.Second, 5*time.Millisecond)
	g := f.room.Snapshot()
	assert.Equal(t, X, g.Board[4])
	assert.Equal(t, O, g.Board[0], "center opening is answered in the first corner")
	assert.Equal(t, X, g.CurrentTurn)

	require.Eventually(t, func() bool {
		m, ok := f.conn.last(t, "update")
		return ok && m.Board != nil && m.Board[0] == O
	}, time.Second, 5*time.Millisecond)

	var sawThinking bool
	for _, m := range f.conn.messages(t) {
		if m.Type == "update" && m.Thinking {
			sawThinking = true
			assert.Equal(t, O, m.Next)
		}
	}
	assert.True(t, sawThinking, "an update with thinking=true is sent before the computer moves")
}

func TestRoom_ComputerOpens(t *testing.T) {
	f := newRoomFixture(t, game.NewGame(O))
	f.room.Start()

	require.Eventually(t, func() bool { return f.room.Snapshot().Moves == 1 }, time.Second, 5*time.Millisecond)
	g := f.room.Snapshot()
	assert.Equal(t, X, g.CurrentTurn)
	assert.Equal(t, O, g.Board[0], "an empty board is opened in the first cell")
	assert.Equal(t, 0, g.LastMove)

	msgs := f.conn.messages(t)
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.True(t, msgs[1].Thinking, "the opening update shows the computer thinking")
	assert.Equal(t, O, msgs[1].Next)

	f.sendMessage(`{"type":"move","cell":4}`)
	require.Eventually(t, func() bool { return f.room.Snapshot().Moves == 3 }, time.Second, 5*time.Millisecond)

	f.sendMessage(`{"type":"restart"}`)
	require.Eventually(t, func() bool {
		g := f.room.Snapshot()
		return g.Moves == 1 && g.Board[0] == O && g.Board[4] == E
	}, time.Second, 5*time.Millisecond, "the computer opens again after a restart")
	g = f.room.Snapshot()
	assert.Equal(t, O, g.FirstTurn)
	assert.Equal(t, X, g.CurrentTurn)
}

func TestRoom_RestartStartsThinkingDelayOver(t *testing.T) {
	const delay = 600 * time.Millisecond
	f := newRoomFixtureWithDelay(t, game.NewGame(O), delay)
	start := time.Now()
	f.room.Start()

	time.Sleep(delay / 2)
	f.sendMessage(`{"type":"restart"}`)
	// assignment and update from Start, then the update from the restart.
	require.Eventually(t, func() bool { return len(f.conn.messages(t)) >= 3 }, time.Second, 5*time.Millisecond)

	time.Sleep(time.Until(start.Add(delay + delay/4)))
	assert.Zero(t, f.room.Snapshot().Moves, "the delay from before the restart must not fire")

	require.Eventually(t, func() bool { return f.room.Snapshot().Moves == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestRoom_RejectsInvalidMessages(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "Malformed JSON", message: `{"type":`},
		{name: "Unknown type", message: `{"type":"rematch"}`},
		{name: "Cell off the board", message: `{"type":"move","cell":9}`},
		{name: "Missing cell", message: `{"type":"move"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRoomFixture(t, game.NewGame(X))
			f.room.Start()

			f.sendMessage(tt.message)

			require.Eventually(t, func() bool {
				_, ok := f.conn.last(t, "error")
				return ok
			}, time.Second, 5*time.Millisecond)
			assert.Equal(t, 0, f.room.Snapshot().Moves)
		})
	}
}

func TestRoom_RejectsOccupiedCell(t *testing.T) {
	g := game.NewGame(X)
	require.NoError(t, g.Move(4, X))
	require.NoError(t, g.Move(0, O))

	f := newRoomFixture(t, g)
	f.room.Start()

	f.sendMessage(`{"type":"move","cell":0}`)

	require.Eventually(t, func() bool {
		m, ok := f.conn.last(t, "error")
		return ok && m.Reason != ""
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, f.room.Snapshot().Moves)
}

func TestRoom_GameOverIsAnnouncedAndPublished(t *testing.T) {
	g := &game.Game{
		Board:       game.Board{O, O, E, X, X, E, X, E, E},
		CurrentTurn: X,
		FirstTurn:   X,
		Outcome:     game.InProgress,
		Moves:       5,
		LastMove:    6,
	}
	f := newRoomFixture(t, g)

	published := make(chan events.Event, 1)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e events.Event) error {
		published <- e
		return nil
	})

	f.room.Start()
	// Leaves the top row open for the computer.
	f.sendMessage(`{"type":"move","cell":8}`)

	select {
	case e := <-published:
		assert.Equal(t, events.TypeGameOver, e.Type)
		var payload events.GameOverPayload
		require.NoError(t, json.Unmarshal(e.Payload, &payload))
		assert.Equal(t, "room-1", payload.RoomID)
		assert.Equal(t, "player-1", payload.PlayerID)
		assert.Equal(t, game.OpponentWins, payload.Outcome)
		assert.Equal(t, 7, payload.Moves)
	case <-time.After(time.Second):
		t.Fatal("game_over event was not published")
	}

	require.Eventually(t, func() bool {
		_, ok := f.conn.last(t, "game_over")
		return ok
	}, time.Second, 5*time.Millisecond)
	m, _ := f.conn.last(t, "game_over")
	assert.Equal(t, "You Lost!", m.Result)
	assert.Equal(t, game.OpponentWins, m.Outcome)

	f.sendMessage(`{"type":"move","cell":5}`)
	require.Eventually(t, func() bool {
		m, ok := f.conn.last(t, "error")
		return ok && m.Reason == game.ErrGameFinished.Error()
	}, time.Second, 5*time.Millisecond)
}

func TestRoom_Restart(t *testing.T) {
	g := game.NewGame(X)
	require.NoError(t, g.Move(4, X))
	require.NoError(t, g.Move(0, O))

	f := newRoomFixture(t, g)
	f.room.Start()

	f.sendMessage(`{"type":"restart"}`)

	require.Eventually(t, func() bool { return f.room.Snapshot().Moves == 0 }, time.Second, 5*time.Millisecond)
	snap := f.room.Snapshot()
	assert.Equal(t, game.Board{}, snap.Board)
	assert.Equal(t, X, snap.CurrentTurn)
	assert.Equal(t, -1, snap.LastMove)
}

func TestRoom_DisconnectAndReattach(t *testing.T) {
	f := newRoomFixture(t, game.NewGame(X))

	disconnected := make(chan struct{})
	f.playerRepo.EXPECT().UpdateConnectionStatus(gomock.Any(), "player-1", player.StatusDisconnected).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e events.Event) error {
		if e.Type == events.TypePlayerDisconnected {
			close(disconnected)
		}
		return nil
	})

	f.room.Start()
	require.Eventually(t, func() bool { return len(f.conn.messages(t)) >= 2 }, time.Second, 5*time.Millisecond)
	f.conn.Close()

	select {
	case <-disconnected:
	case <-time.After(time.Second):
		t.Fatal("player_disconnected event was not published")
	}
	_, gone := f.room.IdleSince()
	assert.True(t, gone)

	f.playerRepo.EXPECT().UpdateConnectionStatus(gomock.Any(), "player-1", player.StatusConnected).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	conn := newFakeConn()
	require.True(t, f.room.Reattach(player.NewPlayer("player-1", conn)))

	require.Eventually(t, func() bool { return len(conn.messages(t)) >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "assignment", conn.messages(t)[0].Type)
	_, gone = f.room.IdleSince()
	assert.False(t, gone)
}

func TestRoom_ReattachAfterClose(t *testing.T) {
	f := newRoomFixture(t, game.NewGame(X))
	f.room.Start()
	f.room.Close()

	assert.False(t, f.room.Reattach(player.NewPlayer("player-1", newFakeConn())))
}

func TestRoom_SelectorFailureKeepsGame(t *testing.T) {
	ctrl := gomock.NewController(t)
	gameRepo := mocks.NewMockGameRepository(ctrl)
	selector := roommocks.NewMockMoveSelector(ctrl)

	called := make(chan struct{})
	selector.EXPECT().NextMove(gomock.Any(), game.Board{}).DoAndReturn(func(context.Context, game.Board) (int, error) {
		close(called)
		return -1, game.ErrInvalidState
	})

	conn := newFakeConn()
	r := NewRoom("room-1", player.NewPlayer("player-1", conn), game.NewGame(O), gameRepo, mocks.NewMockPlayerRepository(ctrl), eventmocks.NewMockPublisher(ctrl), selector, time.Millisecond)
	t.Cleanup(r.Close)
	r.Start()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("selector was not asked for a move")
	}
	r.Close()

	snap := r.Snapshot()
	assert.Equal(t, 0, snap.Moves)
	assert.Equal(t, O, snap.CurrentTurn)
}
