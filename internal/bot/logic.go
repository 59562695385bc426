package bot

import (
	"fmt"
	"math"

	"ctchen222/minimax-tictactoe/internal/game"
)

const winScore = 10

// Result is the outcome of a full search from one position.
type Result struct {
	Move  int // cell chosen for the computer
	Score int // minimax value of Move
	Nodes int // positions visited
}

// SelectMove returns the computer's optimal cell for board, assuming the human
// also plays optimally. Ties go to the lowest cell index.
//
// The board must be in progress with at least one empty cell; otherwise
// game.ErrInvalidState is returned.
func SelectMove(board game.Board) (int, error) {
	res, err := Search(board)
	if err != nil {
		return -1, err
	}
	return res.Move, nil
}

// Search runs the full-width minimax search behind SelectMove.
func Search(board game.Board) (Result, error) {
	if err := board.Validate(); err != nil {
		return Result{Move: -1}, err
	}
	if outcome := game.Evaluate(board); outcome != game.InProgress {
		return Result{Move: -1}, fmt.Errorf("%w: game is %s", game.ErrInvalidState, outcome)
	}

	s := searcher{}
	best := Result{Move: -1, Score: math.MinInt}
	for i := range board {
		if board[i] != game.None {
			continue
		}
		next := board
		next[i] = game.PlayerO
		score := s.score(next, 0, false)
		if score > best.Score {
			best.Score = score
			best.Move = i
		}
	}
	best.Nodes = s.nodes
	return best, nil
}

type searcher struct {
	nodes int
}

// score returns the minimax value of board. Boards are passed by value, so
// every recursive call works on its own copy.
func (s *searcher) score(board game.Board, depth int, maximizing bool) int {
	s.nodes++

	switch game.Evaluate(board) {
	case game.OpponentWins:
		return winScore - depth
	case game.PlayerWins:
		return -winScore + depth
	case game.Draw:
		return 0
	}

	mark := game.PlayerX
	best := math.MaxInt
	if maximizing {
		mark = game.PlayerO
		best = math.MinInt
	}

	for i := range board {
		if board[i] != game.None {
			continue
		}
		next := board
		next[i] = mark
		score := s.score(next, depth+1, !maximizing)
		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}
	return best
}
