package service

import (
	"context"

	"ctchen222/minimax-tictactoe/internal/api/models"
	"ctchen222/minimax-tictactoe/internal/game"
)

// MoveSelector picks the computer's move for a board.
type MoveSelector interface {
	NextMove(ctx context.Context, board game.Board) (int, error)
}

// GameService exposes the board rules and the computer's move selection
// without any session state.
type GameService interface {
	Evaluate(ctx context.Context, cells []string) (*models.EvaluateResponse, error)
	SuggestMove(ctx context.Context, cells []string) (*models.MoveResponse, error)
}

type gameService struct {
	selector MoveSelector
}

// NewGameService creates a new GameService.
func NewGameService(selector MoveSelector) GameService {
	return &gameService{selector: selector}
}

// Evaluate returns the outcome of the board.
func (s *gameService) Evaluate(ctx context.Context, cells []string) (*models.EvaluateResponse, error) {
	board, err := game.ParseBoard(cells)
	if err != nil {
		return nil, err
	}
	return &models.EvaluateResponse{Outcome: game.Evaluate(board)}, nil
}

// SuggestMove returns the computer's move for the board and the outcome after playing it.
func (s *gameService) SuggestMove(ctx context.Context, cells []string) (*models.MoveResponse, error) {
	board, err := game.ParseBoard(cells)
	if err != nil {
		return nil, err
	}

	cell, err := s.selector.NextMove(ctx, board)
	if err != nil {
		return nil, err
	}
	board[cell] = game.PlayerO

	return &models.MoveResponse{
		Cell:    cell,
		Outcome: game.Evaluate(board),
		Board:   board,
	}, nil
}
