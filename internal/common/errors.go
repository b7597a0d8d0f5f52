// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Local store errors.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotInitialized   = errors.New("store not initialized")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrNotFound         = errors.New("not found")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
