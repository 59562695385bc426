package game

import (
	"bytes"
	"fmt"
	"strings"
)

// Mark is the content of a board cell: the human's X, the computer's O, or nothing.
type Mark string

// Outcome is the state of a game as derived from its board.
type Outcome string

const (
	None    Mark = ""
	PlayerX Mark = "X" // the human player
	PlayerO Mark = "O" // the computer opponent

	InProgress   Outcome = "in_progress"
	PlayerWins   Outcome = "player_wins"
	OpponentWins Outcome = "opponent_wins"
	Draw         Outcome = "draw"

	// Board boundaries
	BoardSize = 9
	RowSize   = 3
)

// WinningLines lists the rows, columns and diagonals that win the game.
var WinningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is a 3x3 grid in row-major order: cell 3*row + col.
type Board [BoardSize]Mark

// Evaluate returns the outcome of the board. It does not check that the
// position is reachable by legal play.
func Evaluate(b Board) Outcome {
	for _, line := range WinningLines {
		m := b[line[0]]
		if m != PlayerX && m != PlayerO {
			continue
		}
		if m == b[line[1]] && m == b[line[2]] {
			if m == PlayerX {
				return PlayerWins
			}
			return OpponentWins
		}
	}

	if b.IsFull() {
		return Draw
	}
	return InProgress
}

// Opponent returns the other side's mark.
func (m Mark) Opponent() Mark {
	if m == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// EmptyCells returns the indexes of the empty cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, m := range b {
		if m == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// IsFull reports whether no cell is empty.
func (b Board) IsFull() bool {
	for _, m := range b {
		if m == None {
			return false
		}
	}
	return true
}

// Count returns how many cells hold mark.
func (b Board) Count(mark Mark) int {
	n := 0
	for _, m := range b {
		if m == mark {
			n++
		}
	}
	return n
}

// Validate reports a cell holding something other than X, O or nothing.
func (b Board) Validate() error {
	for i, m := range b {
		if m != None && m != PlayerX && m != PlayerO {
			return fmt.Errorf("%w: cell %d holds %q", ErrMalformedBoard, i, string(m))
		}
	}
	return nil
}

// Rows returns the board as a 3x3 slice of rows.
func (b Board) Rows() [][]Mark {
	rows := make([][]Mark, RowSize)
	for r := range RowSize {
		rows[r] = make([]Mark, RowSize)
		for c := range RowSize {
			rows[r][c] = b[r*RowSize+c]
		}
	}
	return rows
}

func (b Board) String() string {
	var buf bytes.Buffer
	for r := range RowSize {
		if r > 0 {
			buf.WriteString("\n-+-+-\n")
		}
		for c := range RowSize {
			if c > 0 {
				buf.WriteByte('|')
			}
			m := b[r*RowSize+c]
			if m == None {
				buf.WriteByte(' ')
			} else {
				buf.WriteString(string(m))
			}
		}
	}
	return buf.String()
}

// ParseBoard decodes nine cell strings ("", "X" or "O", any case) into a Board.
func ParseBoard(cells []string) (Board, error) {
	var b Board
	if len(cells) != BoardSize {
		return b, fmt.Errorf("%w: expected %d cells, got %d", ErrMalformedBoard, BoardSize, len(cells))
	}
	for i, cell := range cells {
		m := Mark(strings.ToUpper(strings.TrimSpace(cell)))
		if m != None && m != PlayerX && m != PlayerO {
			return b, fmt.Errorf("%w: cell %d holds %q", ErrMalformedBoard, i, cell)
		}
		b[i] = m
	}
	return b, nil
}
