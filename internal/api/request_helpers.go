package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/redact"
	"github.com/phrazzld/taskmaster/internal/service"
)

// actorFromRequest returns the authenticated caller placed in the context by
// the auth middleware. It writes a 401 and returns false when there is none.
func actorFromRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger) (service.Actor, bool) {
	userID, username, ok := shared.Identity(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Username: username}, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%s is required: %w", paramName, domain.ErrInvalidID)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s has invalid format: %w", paramName, domain.ErrInvalidID)
	}
	return id, nil
}

// pathUUID is getPathUUID that writes a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, paramName string, log *slog.Logger) (uuid.UUID, bool) {
	id, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate reads a JSON body into v and runs struct validation,
// writing a 400 (or 413) and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, err, "")
			return false
		}
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
