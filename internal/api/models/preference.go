package models

import "time"

// Themes a player can pick.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Preference is the stored display preference of a player.
type Preference struct {
	PlayerID  string    `db:"player_id" json:"playerId"`
	Theme     string    `db:"theme" json:"theme" validate:"required,oneof=light dark system"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UpdatePreferenceRequest defines the structure for a preference update.
type UpdatePreferenceRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark system"`
}
