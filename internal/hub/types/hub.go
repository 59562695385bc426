package types

import (
	"context"

	"ctchen222/minimax-tictactoe/internal/player"
)

// RegistrationRequest asks the hub to seat a freshly connected player.
type RegistrationRequest struct {
	Player *player.Player
	Ctx    context.Context
}

// PlayerMove is a raw message read from a player's connection.
type PlayerMove struct {
	Player  *player.Player
	Message []byte
}
