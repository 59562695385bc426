package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ctchen222/minimax-tictactoe/internal/api/models"
	"ctchen222/minimax-tictactoe/internal/api/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL = 72 * time.Hour

	registeredPrefix = "user-"
)

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) error
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GuestLogin(ctx context.Context) (string, error)
	ParseToken(tokenString string) (string, error)
	AuthorizePlayer(tokenString, playerID string) error
}

type userService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
}

// NewUserService creates a new UserService signing tokens with jwtSecret.
func NewUserService(userRepo repository.UserRepository, jwtSecret []byte) UserService {
	return &userService{userRepo: userRepo, jwtSecret: jwtSecret}
}

// Register handles user registration.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) error {
	// Check if user already exists
	existingUser, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	if existingUser != nil {
		return ErrUsernameTaken
	}

	user := &models.User{
		Username: req.Username,
	}

	return s.userRepo.CreateUser(ctx, user, req.Password)
}

// Login handles user login and returns a JWT on success.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	playerID := userPlayerID(user.ID)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": playerID,
		"un":  user.Username,
		"exp": time.Now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.LoginResponse{Token: tokenString, PlayerID: playerID}, nil
}

// userPlayerID is the player id of a registered user. It cannot collide with
// guest ids, which are UUIDs.
func userPlayerID(userID int64) string {
	return registeredPrefix + strconv.FormatInt(userID, 10)
}

// IsRegisteredPlayerID reports whether id belongs to a registered user.
func IsRegisteredPlayerID(id string) bool {
	return strings.HasPrefix(id, registeredPrefix)
}

// GuestLogin generates a UUID for a guest player.
func (s *userService) GuestLogin(ctx context.Context) (string, error) {
	return uuid.New().String(), nil
}

// ParseToken verifies a login token and returns the player id it was issued for.
func (s *userService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}

// AuthorizePlayer checks that the holder of tokenString may act as playerID.
// Registered ids need a token issued for them; guest ids may go without one.
func (s *userService) AuthorizePlayer(tokenString, playerID string) error {
	if tokenString == "" {
		if IsRegisteredPlayerID(playerID) {
			return ErrTokenRequired
		}
		return nil
	}

	subject, err := s.ParseToken(tokenString)
	if err != nil {
		return err
	}
	if subject != playerID {
		return ErrPlayerMismatch
	}
	return nil
}
