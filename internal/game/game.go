package game

import (
	"fmt"
	"math/rand/v2"
)

// First turn policies.
const (
	FirstPlayer   = "player"
	FirstComputer = "computer"
	FirstRandom   = "random"
)

// Game is the state of one human-vs-computer game.
type Game struct {
	Board       Board   `json:"board"`
	CurrentTurn Mark    `json:"next"`
	FirstTurn   Mark    `json:"first"`
	Outcome     Outcome `json:"outcome"`
	Moves       int     `json:"moves"`
	LastMove    int     `json:"lastMove"`
}

// NewGame returns an empty game where first moves first.
func NewGame(first Mark) *Game {
	if first != PlayerO {
		first = PlayerX
	}
	return &Game{
		CurrentTurn: first,
		FirstTurn:   first,
		Outcome:     InProgress,
		LastMove:    -1,
	}
}

// Move places mark on cell and advances the turn.
func (g *Game) Move(cell int, mark Mark) error {
	if g.IsOver() {
		return ErrGameFinished
	}
	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: %d", ErrInvalidCell, cell)
	}
	if g.CurrentTurn != mark {
		return ErrNotYourTurn
	}
	if g.Board[cell] != None {
		return fmt.Errorf("%w: %d", ErrCellOccupied, cell)
	}

	g.Board[cell] = mark
	g.Moves++
	g.LastMove = cell

	g.Outcome = Evaluate(g.Board)
	if g.IsOver() {
		g.CurrentTurn = None
	} else {
		g.CurrentTurn = mark.Opponent()
	}
	return nil
}

// Reset clears the board and hands the turn back to whoever started.
func (g *Game) Reset() {
	*g = *NewGame(g.FirstTurn)
}

// IsOver reports whether the game has been won or drawn.
func (g *Game) IsOver() bool {
	return g.Outcome != InProgress && g.Outcome != ""
}

// ChooseFirstTurn maps a first turn policy to the mark that opens the game.
func ChooseFirstTurn(policy string) Mark {
	switch policy {
	case FirstComputer:
		return PlayerO
	case FirstRandom:
		return randomlyChooseFirstPlayer()
	default:
		return PlayerX
	}
}

func randomlyChooseFirstPlayer() Mark {
	if rand.IntN(2) == 0 {
		return PlayerX
	}
	return PlayerO
}
