package hub

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
	"ctchen222/minimax-tictactoe/internal/repository"
	"ctchen222/minimax-tictactoe/internal/repository/mocks"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"
)

type fakeConn struct {
	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	written   []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{done: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.done
	return 0, nil, errors.New("connection closed")
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var m struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(data, &m)
	c.written = append(c.written, m.Type)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

type hubFixture struct {
	hub        *Hub
	gameRepo   *mocks.MockGameRepository
	playerRepo *mocks.MockPlayerRepository
	publisher  *eventmocks.MockPublisher
	reader     *sdkmetric.ManualReader
}

func newHubFixture(t *testing.T, opts Options) *hubFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &hubFixture{
		gameRepo:   mocks.NewMockGameRepository(ctrl),
		playerRepo: mocks.NewMockPlayerRepository(ctrl),
		publisher:  eventmocks.NewMockPublisher(ctrl),
		reader:     sdkmetric.NewManualReader(),
	}
	opts.MeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(f.reader))
	f.hub = NewHub(nil, f.gameRepo, f.playerRepo, f.publisher, bot.NewEngine(), opts)
	t.Cleanup(f.hub.closeAll)
	return f
}

func TestHub_NewPlayerGetsNewGame(t *testing.T) {
	f := newHubFixture(t, Options{ThinkDelay: time.Millisecond, FirstTurn: game.FirstPlayer})
	ctx := context.Background()

	var savedRoom string
	f.playerRepo.EXPECT().FindForReconnection(gomock.Any(), "p1").Return("", player.PlayerStatus(""), nil)
	f.gameRepo.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, roomID string, g *game.Game) error {
		savedRoom = roomID
		assert.Equal(t, game.PlayerX, g.CurrentTurn)
		return nil
	})
	f.playerRepo.EXPECT().UpdateForSession(gomock.Any(), "p1", gomock.Any()).Return(nil)

	conn := newFakeConn()
	f.hub.handleRegistration(ctx, player.NewPlayer("p1", conn))

	require.Len(t, f.hub.localRooms, 1)
	require.Contains(t, f.hub.localRooms, savedRoom)
	require.Eventually(t, func() bool { return len(conn.types()) >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"assignment", "update"}, conn.types()[:2])
}

func TestHub_ReconnectToLiveRoom(t *testing.T) {
	f := newHubFixture(t, Options{ThinkDelay: time.Millisecond})
	ctx := context.Background()

	f.gameRepo.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.playerRepo.EXPECT().UpdateForSession(gomock.Any(), "p1", gomock.Any()).Return(nil)
	f.playerRepo.EXPECT().FindForReconnection(gomock.Any(), "p1").Return("", player.PlayerStatus(""), nil)
	f.hub.handleRegistration(ctx, player.NewPlayer("p1", newFakeConn()))
	require.Len(t, f.hub.localRooms, 1)

	var roomID string
	for id := range f.hub.localRooms {
		roomID = id
	}

	f.playerRepo.EXPECT().FindForReconnection(gomock.Any(), "p1").Return(roomID, player.StatusConnected, nil)
	f.playerRepo.EXPECT().UpdateConnectionStatus(gomock.Any(), "p1", player.StatusConnected).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	conn := newFakeConn()
	f.hub.handleRegistration(ctx, player.NewPlayer("p1", conn))

	assert.Len(t, f.hub.localRooms, 1)
	require.Eventually(t, func() bool { return len(conn.types()) >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "assignment", conn.types()[0])
}

func TestHub_RestoresSavedGame(t *testing.T) {
	f := newHubFixture(t, Options{ThinkDelay: time.Millisecond})
	ctx := context.Background()

	saved := game.NewGame(game.PlayerX)
	require.NoError(t, saved.Move(4, game.PlayerX))
	require.NoError(t, saved.Move(0, game.PlayerO))

	f.playerRepo.EXPECT().FindForReconnection(gomock.Any(), "p1").Return("room-9", player.StatusDisconnected, nil)
	f.gameRepo.EXPECT().FindByID(gomock.Any(), "room-9").Return(saved, nil)
	f.playerRepo.EXPECT().UpdateForSession(gomock.Any(), "p1", "room-9").Return(nil)

	f.hub.handleRegistration(ctx, player.NewPlayer("p1", newFakeConn()))

	require.Contains(t, f.hub.localRooms, "room-9")
	snap := f.hub.localRooms["room-9"].Snapshot()
	assert.Equal(t, 2, snap.Moves)
	assert.Equal(t, game.PlayerX, snap.CurrentTurn)
}

func TestHub_ExpiredGameStartsFresh(t *testing.T) {
	f := newHubFixture(t, Options{ThinkDelay: time.Millisecond})
	ctx := context.Background()

	f.playerRepo.EXPECT().FindForReconnection(gomock.Any(), "p1").Return("room-9", player.StatusDisconnected, nil)
	f.gameRepo.EXPECT().FindByID(gomock.Any(), "room-9").Return(nil, repository.ErrGameNotFound)
	f.gameRepo.EXPECT().Save(gomock.Any(), gomock.Not("room-9"), gomock.Any()).Return(nil)
	f.playerRepo.EXPECT().UpdateForSession(gomock.Any(), "p1", gomock.Not("room-9")).Return(nil)

	f.hub.handleRegistration(ctx, player.NewPlayer("p1", newFakeConn()))

	assert.Len(t, f.hub.localRooms, 1)
	assert.NotContains(t, f.hub.localRooms, "room-9")
}

func TestHub_CleanupClosesAbandonedRooms(t *testing.T) {
	f := newHubFixture(t, Options{ThinkDelay: time.Millisecond, ReconnectGrace: time.Millisecond})
	ctx := context.Background()

	f.playerRepo.EXPECT().FindForReconnection(gomock.Any(), "p1").Return("", player.PlayerStatus(""), nil)
	f.gameRepo.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.playerRepo.EXPECT().UpdateForSession(gomock.Any(), "p1", gomock.Any()).Return(nil)

	disconnected := make(chan struct{})
	f.playerRepo.EXPECT().UpdateConnectionStatus(gomock.Any(), "p1", player.StatusDisconnected).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, events.Event) error {
		close(disconnected)
		return nil
	})
	f.playerRepo.EXPECT().SetOffline(gomock.Any(), "p1").Return(nil)

	conn := newFakeConn()
	f.hub.handleRegistration(ctx, player.NewPlayer("p1", conn))

	f.hub.cleanupRooms(ctx)
	require.Len(t, f.hub.localRooms, 1, "connected players are never cleaned up")

	conn.Close()
	select {
	case <-disconnected:
	case <-time.After(time.Second):
		t.Fatal("disconnect was not observed")
	}
	time.Sleep(5 * time.Millisecond)

	f.hub.cleanupRooms(ctx)
	assert.Empty(t, f.hub.localRooms)
}

func TestHub_HandleEventCountsFinishedGames(t *testing.T) {
	f := newHubFixture(t, Options{})
	ctx := context.Background()

	for _, outcome := range []game.Outcome{game.OpponentWins, game.Draw, game.Draw} {
		e, err := events.New(events.TypeGameOver, events.GameOverPayload{RoomID: "r", PlayerID: "p", Outcome: outcome})
		require.NoError(t, err)
		data, err := json.Marshal(e)
		require.NoError(t, err)
		f.hub.handleEvent(ctx, string(data))
	}
	f.hub.handleEvent(ctx, "not json")
	f.hub.handleEvent(ctx, `{"event":"player_disconnected","payload":{"room_id":"r","player_id":"p"}}`)

	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "games.finished" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value("outcome")
				counts[v.AsString()] = dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"opponent_wins": 1, "draw": 2}, counts)
}
