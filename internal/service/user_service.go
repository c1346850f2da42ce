package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/service/auth"
	"github.com/phrazzld/taskmaster/internal/store"
)

// UserService provides account operations.
type UserService interface {
	// Register creates an account. Returns ErrUsernameTaken when the
	// username is in use.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate checks a username/password pair and returns the user or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userServiceImpl struct {
	users    store.UserStore
	tx       store.Transactor
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users store.UserStore,
	tx store.Transactor,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil || tx == nil || verifier == nil {
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "dependencies cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		users:    users,
		tx:       tx,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.
func (s *userServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, password)
	if err != nil {
		log.Debug("invalid registration data", slog.String("error", err.Error()))
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			log.Debug("attempted to register existing username", slog.String("username", user.Username))
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("user", "register", "failed to create user", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return user, nil
}

// Authenticate implements UserService.
func (s *userServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown username")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "authenticate", "failed to retrieve user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
		return nil, NewServiceError("user", "get_user", "failed to retrieve user", err)
	}
	return user, nil
}
