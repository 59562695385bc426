package player

import "time"

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// PlayerStatus is the connection state of a player.
type PlayerStatus string

const (
	StatusConnected    PlayerStatus = "connected"
	StatusDisconnected PlayerStatus = "disconnected"
)

// Player is the human side of a game.
type Player struct {
	ID       string
	Conn     Connection
	Status   PlayerStatus
	LastSeen time.Time
}

// NewPlayer creates a connected player.
func NewPlayer(id string, conn Connection) *Player {
	return &Player{
		ID:       id,
		Conn:     conn,
		Status:   StatusConnected,
		LastSeen: time.Now(),
	}
}

// Disconnect marks the player as gone, keeping the time for the grace period.
func (p *Player) Disconnect() {
	p.Status = StatusDisconnected
	p.LastSeen = time.Now()
}
