package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountDisabled = errors.New("account is disabled")
)

// Domain refinements. Each wraps one of the sentinels above so callers can
// match either the specific or the general condition.
var (
	ErrUsernameTaken      = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrInvalidEmail       = fmt.Errorf("invalid email address: %w", ErrBadRequest)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrWrongPassword      = fmt.Errorf("current password is incorrect: %w", ErrBadRequest)
	ErrWeaponNotFound     = fmt.Errorf("weapon not found: %w", ErrNotFound)
	ErrWeaponInUse        = fmt.Errorf("weapon has training sessions: %w", ErrConflict)
)

// ValidationError is a client input error with a user-visible message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrBadRequest) match validation failures.
func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
