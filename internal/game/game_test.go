package game

import (
	"errors"
	"testing"
)

const (
	X = PlayerX
	O = PlayerO
	E = None
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  Outcome
	}{
		{
			name:  "Empty board",
			board: Board{},
			want:  InProgress,
		},
		{
			name:  "Partial board without a line",
			board: Board{X, E, E, E, O, E, E, E, E},
			want:  InProgress,
		},
		{
			name:  "Opponent top row",
			board: Board{O, O, O, X, X, E, X, E, E},
			want:  OpponentWins,
		},
		{
			name:  "Player middle row",
			board: Board{O, E, O, X, X, X, E, E, E},
			want:  PlayerWins,
		},
		{
			name:  "Opponent bottom row",
			board: Board{X, X, E, X, E, E, O, O, O},
			want:  OpponentWins,
		},
		{
			name:  "Player first column",
			board: Board{X, O, E, X, O, E, X, E, E},
			want:  PlayerWins,
		},
		{
			name:  "Opponent second column",
			board: Board{X, O, E, X, O, E, E, O, X},
			want:  OpponentWins,
		},
		{
			name:  "Player third column",
			board: Board{O, E, X, O, E, X, E, E, X},
			want:  PlayerWins,
		},
		{
			name:  "Opponent main diagonal",
			board: Board{O, X, E, X, O, E, E, X, O},
			want:  OpponentWins,
		},
		{
			name:  "Player anti-diagonal",
			board: Board{O, O, X, E, X, E, X, E, E},
			want:  PlayerWins,
		},
		{
			name:  "Full board without a line",
			board: Board{X, O, X, O, X, O, O, X, O},
			want:  Draw,
		},
		{
			name:  "Full board with a line is a win, not a draw",
			board: Board{X, X, X, O, O, X, O, X, O},
			want:  PlayerWins,
		},
		{
			name:  "Unknown marks never form a line",
			board: Board{"Z", "Z", "Z", E, E, E, E, E, E},
			want:  InProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.board); got != tt.want {
				t.Errorf("Evaluate() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_EveryLine(t *testing.T) {
	for _, line := range WinningLines {
		for _, mark := range []Mark{X, O} {
			var b Board
			for _, i := range line {
				b[i] = mark
			}
			want := PlayerWins
			if mark == O {
				want = OpponentWins
			}
			if got := Evaluate(b); got != want {
				t.Errorf("Evaluate() for %v on line %v got = %v, want %v", mark, line, got, want)
			}
		}
	}
}

func TestBoardHelpers(t *testing.T) {
	b := Board{X, E, O, E, X, E, E, E, O}

	if got := b.EmptyCells(); len(got) != 5 || got[0] != 1 || got[4] != 7 {
		t.Errorf("EmptyCells() got = %v, want [1 3 5 6 7]", got)
	}
	if b.IsFull() {
		t.Error("IsFull() got = true for a partial board")
	}
	if b.Count(X) != 2 || b.Count(O) != 2 {
		t.Errorf("Count() got X=%d O=%d, want 2 and 2", b.Count(X), b.Count(O))
	}
	rows := b.Rows()
	if rows[0][2] != O || rows[1][1] != X || rows[2][2] != O {
		t.Errorf("Rows() got = %v", rows)
	}
	if got, want := b.String(), "X| |O\n-+-+-\n |X| \n-+-+-\n | |O"; got != want {
		t.Errorf("String() got = %q, want %q", got, want)
	}
}

func TestBoardValidate(t *testing.T) {
	if err := (Board{X, O, E, E, E, E, E, E, E}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	err := (Board{X, "Q", E, E, E, E, E, E, E}).Validate()
	if !errors.Is(err, ErrMalformedBoard) {
		t.Errorf("Validate() got = %v, want ErrMalformedBoard", err)
	}
}

func TestParseBoard(t *testing.T) {
	b, err := ParseBoard([]string{"x", "O", "", " ", "X", "o", "", "", ""})
	if err != nil {
		t.Fatalf("ParseBoard() unexpected error: %v", err)
	}
	want := Board{X, O, E, E, X, O, E, E, E}
	if b != want {
		t.Errorf("ParseBoard() got = %v, want %v", b, want)
	}

	if _, err := ParseBoard([]string{"X"}); !errors.Is(err, ErrMalformedBoard) {
		t.Errorf("ParseBoard() short board got = %v, want ErrMalformedBoard", err)
	}
	if _, err := ParseBoard([]string{"X", "O", "?", "", "", "", "", "", ""}); !errors.Is(err, ErrMalformedBoard) {
		t.Errorf("ParseBoard() unknown mark got = %v, want ErrMalformedBoard", err)
	}
}

func TestGame_Move(t *testing.T) {
	t.Run("Alternates turns and counts moves", func(t *testing.T) {
		g := NewGame(X)
		if err := g.Move(4, X); err != nil {
			t.Fatalf("Move() unexpected error: %v", err)
		}
		if g.CurrentTurn != O || g.Moves != 1 || g.LastMove != 4 {
			t.Errorf("after X@4 got turn=%v moves=%d last=%d", g.CurrentTurn, g.Moves, g.LastMove)
		}
		if err := g.Move(0, O); err != nil {
			t.Fatalf("Move() unexpected error: %v", err)
		}
		if g.CurrentTurn != X || g.Moves != 2 {
			t.Errorf("after O@0 got turn=%v moves=%d", g.CurrentTurn, g.Moves)
		}
		if g.Moves != g.Board.Count(X)+g.Board.Count(O) {
			t.Errorf("Moves = %d does not match marks on board", g.Moves)
		}
	})

	t.Run("Rejects out of turn", func(t *testing.T) {
		g := NewGame(X)
		if err := g.Move(0, O); !errors.Is(err, ErrNotYourTurn) {
			t.Errorf("Move() got = %v, want ErrNotYourTurn", err)
		}
	})

	t.Run("Rejects occupied cell", func(t *testing.T) {
		g := NewGame(X)
		_ = g.Move(0, X)
		if err := g.Move(0, O); !errors.Is(err, ErrCellOccupied) {
			t.Errorf("Move() got = %v, want ErrCellOccupied", err)
		}
		if g.Board[0] != X || g.CurrentTurn != O {
			t.Error("failed move changed the game")
		}
	})

	t.Run("Rejects cells off the board", func(t *testing.T) {
		g := NewGame(X)
		for _, cell := range []int{-1, 9, 20} {
			if err := g.Move(cell, X); !errors.Is(err, ErrInvalidCell) {
				t.Errorf("Move(%d) got = %v, want ErrInvalidCell", cell, err)
			}
		}
	})

	t.Run("Finishes on a win", func(t *testing.T) {
		g := NewGame(X)
		for i, cell := range []int{0, 3, 1, 4, 2} {
			mark := X
			if i%2 == 1 {
				mark = O
			}
			if err := g.Move(cell, mark); err != nil {
				t.Fatalf("Move(%d) unexpected error: %v", cell, err)
			}
		}
		if g.Outcome != PlayerWins || !g.IsOver() || g.CurrentTurn != None {
			t.Errorf("got outcome=%v over=%v turn=%q", g.Outcome, g.IsOver(), g.CurrentTurn)
		}
		if err := g.Move(5, O); !errors.Is(err, ErrGameFinished) {
			t.Errorf("Move() after win got = %v, want ErrGameFinished", err)
		}
	})

	t.Run("Finishes on a draw", func(t *testing.T) {
		g := NewGame(X)
		// X O X / O X X / O X O, played in alternating order.
		for i, cell := range []int{0, 1, 2, 3, 4, 8, 5, 6, 7} {
			mark := X
			if i%2 == 1 {
				mark = O
			}
			if err := g.Move(cell, mark); err != nil {
				t.Fatalf("Move(%d) unexpected error: %v", cell, err)
			}
		}
		if g.Outcome != Draw {
			t.Errorf("got outcome=%v, want draw", g.Outcome)
		}
	})
}

func TestGame_Reset(t *testing.T) {
	g := NewGame(O)
	_ = g.Move(4, O)
	_ = g.Move(0, X)
	g.Reset()

	if g.Board != (Board{}) || g.Moves != 0 || g.LastMove != -1 {
		t.Errorf("Reset() left state behind: %+v", g)
	}
	if g.CurrentTurn != O || g.FirstTurn != O || g.Outcome != InProgress {
		t.Errorf("Reset() got turn=%v first=%v outcome=%v", g.CurrentTurn, g.FirstTurn, g.Outcome)
	}
}

func TestChooseFirstTurn(t *testing.T) {
	if got := ChooseFirstTurn(FirstPlayer); got != X {
		t.Errorf("ChooseFirstTurn(player) got = %v", got)
	}
	if got := ChooseFirstTurn(FirstComputer); got != O {
		t.Errorf("ChooseFirstTurn(computer) got = %v", got)
	}
	if got := ChooseFirstTurn("unknown"); got != X {
		t.Errorf("ChooseFirstTurn(unknown) got = %v", got)
	}

	seenX, seenO := false, false
	for i := 0; i < 100; i++ {
		switch ChooseFirstTurn(FirstRandom) {
		case X:
			seenX = true
		case O:
			seenO = true
		default:
			t.Fatal("ChooseFirstTurn(random) returned an invalid mark")
		}
	}
	if !seenX || !seenO {
		t.Errorf("ChooseFirstTurn(random) did not return both marks over 100 runs. Seen X: %v, Seen O: %v", seenX, seenO)
	}
}
