package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ctchen222/minimax-tictactoe/internal/api/models"

	"github.com/jmoiron/sqlx"
)

// PreferenceRepository defines the interface for preference data operations.
type PreferenceRepository interface {
	GetPreference(ctx context.Context, playerID string) (*models.Preference, error)
	SavePreference(ctx context.Context, pref *models.Preference) error
}

type sqlitePreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository creates a new SQLite-based PreferenceRepository.
func NewPreferenceRepository(db *sqlx.DB) PreferenceRepository {
	return &sqlitePreferenceRepository{db: db}
}

// GetPreference returns the stored preference of a player, or nil if none was saved.
func (r *sqlitePreferenceRepository) GetPreference(ctx context.Context, playerID string) (*models.Preference, error) {
	var pref models.Preference
	query := `SELECT player_id, theme, updated_at FROM preferences WHERE player_id = ?`
	if err := r.db.GetContext(ctx, &pref, query, playerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}
	return &pref, nil
}

// SavePreference inserts or replaces the preference of a player.
func (r *sqlitePreferenceRepository) SavePreference(ctx context.Context, pref *models.Preference) error {
	query := `
	INSERT INTO preferences (player_id, theme, updated_at) VALUES (:player_id, :theme, :updated_at)
	ON CONFLICT(player_id) DO UPDATE SET theme = excluded.theme, updated_at = excluded.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}
