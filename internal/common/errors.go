// Package common defines shared constants and sentinel errors used across
// the marketplace layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Token errors. Tampered signatures, expired tokens and garbage input
	// are kept apart; the HTTP layer collapses them to ErrorUnauthorized.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrMalformedToken = errors.New("malformed token")

	// Registration reasons.
	ErrUsernameTaken    = fmt.Errorf("username %w", ErrorAlreadyExists)
	ErrEmailTaken       = fmt.Errorf("email %w", ErrorAlreadyExists)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", ErrorValidation, MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most %d bytes", ErrorValidation, MaxPasswordBytes)
)

// Validationf builds an ErrorValidation carrying a precise reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}
