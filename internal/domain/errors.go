package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Specific validation errors wrap it so callers can match either.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// validationError builds a sentinel that matches both itself and ErrValidation.
func validationError(msg string) error {
	return &fieldError{msg: msg}
}

type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

func (e *fieldError) Unwrap() error { return ErrValidation }
