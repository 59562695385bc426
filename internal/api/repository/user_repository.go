package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ctchen222/minimax-tictactoe/internal/api/models"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const (
	insertUserQuery = `INSERT INTO users (username, password_hash) VALUES (?, ?)`
	selectUserQuery = `SELECT id, username, password_hash FROM users WHERE username = ?`
)

// UserRepository stores registered accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	// GetUserByUsername returns nil, nil when no account has that name.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type sqliteUserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

// CreateUser stores user with a bcrypt hash of password and fills in its ID.
func (r *sqliteUserRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	res, err := r.db.ExecContext(ctx, insertUserQuery, user.Username, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user %q: %w", user.Username, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		user.ID = id
	}
	return nil
}

func (r *sqliteUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, selectUserQuery, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return &user, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
