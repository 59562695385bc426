package service

import (
	"context"
	"time"

	"ctchen222/minimax-tictactoe/internal/api/models"
	"ctchen222/minimax-tictactoe/internal/api/repository"
	"ctchen222/minimax-tictactoe/internal/validator"
)

// PreferenceService defines the interface for player preference logic.
type PreferenceService interface {
	Get(ctx context.Context, playerID string) (*models.Preference, error)
	Update(ctx context.Context, playerID string, req *models.UpdatePreferenceRequest) (*models.Preference, error)
}

type preferenceService struct {
	prefRepo repository.PreferenceRepository
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(prefRepo repository.PreferenceRepository) PreferenceService {
	return &preferenceService{prefRepo: prefRepo}
}

// Get returns the preference of a player, falling back to the system theme.
func (s *preferenceService) Get(ctx context.Context, playerID string) (*models.Preference, error) {
	pref, err := s.prefRepo.GetPreference(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return &models.Preference{PlayerID: playerID, Theme: models.ThemeSystem}, nil
	}
	return pref, nil
}

// Update stores the theme picked by a player.
func (s *preferenceService) Update(ctx context.Context, playerID string, req *models.UpdatePreferenceRequest) (*models.Preference, error) {
	pref := &models.Preference{
		PlayerID:  playerID,
		Theme:     req.Theme,
		UpdatedAt: time.Now().UTC(),
	}
	if err := validator.GetValidator().Struct(pref); err != nil {
		return nil, err
	}
	if err := s.prefRepo.SavePreference(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
