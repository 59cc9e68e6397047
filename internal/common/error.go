package common

import "errors"

var (
	// Token lifecycle errors.
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("authentication expired")

	// Configuration errors.
	ErrUnknownStoreBackend = errors.New("unknown store backend")
)
