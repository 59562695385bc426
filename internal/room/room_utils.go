package room

import (
	"time"

	"ctchen222/minimax-tictactoe/internal/game"
	"ctchen222/minimax-tictactoe/internal/player"
)

// PlayerID returns the id of the human seated in the room.
func (r *Room) PlayerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.player.ID
}

// IdleSince reports when the player left, and whether they are still gone.
func (r *Room) IdleSince() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.player.LastSeen, r.player.Status == player.StatusDisconnected
}

// Snapshot returns a copy of the current game.
func (r *Room) Snapshot() game.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.game
}
