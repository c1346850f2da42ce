package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// bcryptCost outside bcrypt's accepted range falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
	}
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
		logger:     s.logger,
	}
}

// Create implements store.UserStore.Create.
// The plaintext password is hashed and cleared from the user on success.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("username", user.Username))
		return err
	}

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hashed)
	}

	query := `
		INSERT INTO users (id, username, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Info("username already taken", slog.String("username", user.Username))
			return store.ErrUsernameExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "failed to insert user", MapError(err))
	}

	user.Password = ""
	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "id", id)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, "username", username)
}

func (s *PostgresUserStore) getOne(ctx context.Context, column string, value any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, username, hashed_password, created_at, updated_at
		FROM users
		WHERE ` + column + ` = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Username,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("lookup", column))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("lookup", column),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "failed to query user", MapError(err))
	}

	return &user, nil
}
