package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrTaskNotFound indicates the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAttachmentNotFound indicates no attachment is stored under a name.
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrUsernameTaken indicates registration with an existing username.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	// Service names the service (e.g. "task", "attachment")
	Service string
	// Operation is the operation that failed (e.g. "create_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError classifies err. Service sentinels and domain validation
// errors are returned unchanged, store sentinels are mapped to their service
// counterparts and anything else is wrapped in a ServiceError.
func NewServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		ErrNotOwned, ErrTaskNotFound, ErrAttachmentNotFound, ErrUsernameTaken, ErrInvalidCredentials,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return err
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrAttachmentNotFound):
		return ErrAttachmentNotFound
	case errors.Is(err, store.ErrUsernameExists):
		return ErrUsernameTaken
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
