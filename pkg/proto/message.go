package proto

import "ctchen222/minimax-tictactoe/internal/game"

// Message types.
const (
	TypeMove       = "move"
	TypeRestart    = "restart"
	TypeUpdate     = "update"
	TypeAssignment = "assignment"
	TypeError      = "error"
	TypeGameOver   = "game_over"
)

// Result messages shown to the human when a game ends.
const (
	ResultWon  = "You Won!"
	ResultLost = "You Lost!"
	ResultDraw = "It's a Draw!"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type string `json:"type" validate:"required,oneof=move restart"`
	Cell *int   `json:"cell,omitempty" validate:"omitempty,min=0,max=8"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type     string       `json:"type" validate:"required"`
	Reason   string       `json:"reason,omitempty"`
	Board    *game.Board  `json:"board,omitempty"`
	Next     game.Mark    `json:"next,omitempty"`
	Outcome  game.Outcome `json:"outcome,omitempty"`
	LastMove *int         `json:"lastMove,omitempty"`
	Thinking bool         `json:"thinking,omitempty"`
	Result   string       `json:"result,omitempty"`
}

// PlayerAssignmentMessage informs a player of their assigned mark.
type PlayerAssignmentMessage struct {
	Type     string    `json:"type"`
	PlayerID string    `json:"playerId,omitempty"`
	Mark     game.Mark `json:"mark"`
}

// NewUpdateMessage builds the update sent after every change to g.
func NewUpdateMessage(g *game.Game, thinking bool) *ServerToClientMessage {
	board := g.Board
	msg := &ServerToClientMessage{
		Type:     TypeUpdate,
		Board:    &board,
		Next:     g.CurrentTurn,
		Outcome:  g.Outcome,
		Thinking: thinking,
	}
	if g.LastMove >= 0 {
		last := g.LastMove
		msg.LastMove = &last
	}
	return msg
}

// NewGameOverMessage builds the end-of-game message, worded from the human's side.
func NewGameOverMessage(outcome game.Outcome) *ServerToClientMessage {
	msg := &ServerToClientMessage{Type: TypeGameOver, Outcome: outcome}
	switch outcome {
	case game.PlayerWins:
		msg.Result = ResultWon
	case game.OpponentWins:
		msg.Result = ResultLost
	default:
		msg.Result = ResultDraw
	}
	return msg
}

// NewErrorMessage builds an error message carrying reason.
func NewErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
