package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/service"
	"github.com/phrazzld/taskmaster/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	timeFunc   func() time.Time
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users service.UserService, jwtService auth.JWTService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		timeFunc:   time.Now,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Registration failed")
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Login failed")
		return
	}

	h.respondWithTokens(w, r, user, http.StatusOK)
}

// RefreshToken handles POST /api/auth/refresh, exchanging a valid refresh
// token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid refresh token", err)
		return
	}

	user, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		// The account behind a still-valid token is gone.
		if MapErrorToStatusCode(err) == http.StatusNotFound {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid refresh token", err)
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	h.respondWithTokens(w, r, user, http.StatusOK)
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, user *domain.User, status int) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accessToken, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Username)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), user.ID, user.Username)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate refresh token", err)
		return
	}

	expiresAt := h.timeFunc().Add(h.jwtService.AccessTokenLifetime()).UTC()

	log.Debug("issued token pair", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, status, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.Format(time.RFC3339),
		UserID:       user.ID,
		Username:     user.Username,
	})
}
