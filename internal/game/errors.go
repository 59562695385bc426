package game

import "errors"

var (
	ErrInvalidState   = errors.New("no move available in this position")
	ErrMalformedBoard = errors.New("malformed board")
	ErrInvalidCell    = errors.New("invalid cell index")
	ErrCellOccupied   = errors.New("cell already occupied")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrGameFinished   = errors.New("game already finished")
)
