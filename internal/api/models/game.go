package models

import "ctchen222/minimax-tictactoe/internal/game"

// BoardRequest carries a board as nine cells of "X", "O" or "".
type BoardRequest struct {
	Board []string `json:"board" binding:"required,len=9"`
}

// EvaluateResponse is the outcome of a board.
type EvaluateResponse struct {
	Outcome game.Outcome `json:"outcome"`
}

// MoveResponse is the computer's move and the outcome once it is played.
type MoveResponse struct {
	Cell    int          `json:"cell"`
	Outcome game.Outcome `json:"outcome"`
	Board   game.Board   `json:"board"`
}
