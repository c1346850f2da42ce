package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/service"
	"github.com/phrazzld/taskmaster/internal/service/auth"
	"github.com/phrazzld/taskmaster/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrAttachmentNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrNotOwned):
		return "Only the task creator can delete this task"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Not authorized"

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrAttachmentNotFound),
		errors.Is(err, store.ErrAttachmentNotFound):
		return "Attachment not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, store.ErrUsernameExists):
		return "User already exists"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	// Domain validation messages are written for end users.
	case errors.Is(err, domain.ErrValidation):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.As(err, &tooLarge):
		return fmt.Sprintf("File too large (limit %d bytes)", tooLarge.Limit)

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. defaultMsg
// replaces the generic text of unclassified server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns a validator error into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "Validation error"
	}

	fe := fieldErrors[0]
	field := strings.ToLower(fe.Field())
	if fe.Tag() == "" {
		return fmt.Sprintf("Invalid %s", field)
	}
	return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(fe.Tag(), fe.Param()))
}

// validationTagMessage maps validation tags to user-friendly error messages
func validationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "must be at least " + param + " characters long"
	case "max":
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of " + param
	case "alphanum", "username":
		return "may only contain letters, numbers and underscores"
	default:
		return "validation failed"
	}
}
