package service

import "errors"

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRequired      = errors.New("registered players must present a token")
	ErrPlayerMismatch     = errors.New("token was issued for another player")
)
