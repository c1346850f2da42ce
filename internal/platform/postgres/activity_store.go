package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/store"
)

// PostgresActivityStore implements store.ActivityStore on PostgreSQL.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// NewPostgresActivityStore creates an activity store. A nil logger means slog.Default().
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// WithTx implements store.ActivityStore.WithTx
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &PostgresActivityStore{db: tx, logger: s.logger}
}

// Create implements store.ActivityStore.Create
func (s *PostgresActivityStore) Create(ctx context.Context, a *domain.Activity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity (id, task_id, username, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.TaskID, a.Username, a.Action, a.CreatedAt)
	if err != nil {
		log.Error("failed to record activity",
			slog.String("error", err.Error()),
			slog.String("task_id", a.TaskID.String()),
			slog.String("action", a.Action))
		return store.NewStoreError("activity", "create", "failed to insert activity", mapTaskReference(err))
	}
	return nil
}

// ListByTask implements store.ActivityStore.ListByTask
func (s *PostgresActivityStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, username, action, created_at
		FROM activity
		WHERE task_id = $1
		ORDER BY created_at DESC, id DESC
	`, taskID)
	if err != nil {
		log.Error("failed to list activity",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("activity", "list", "failed to query activity", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.Activity, 0)
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Username, &a.Action, &a.CreatedAt); err != nil {
			return nil, store.NewStoreError("activity", "list", "failed to scan activity", err)
		}
		entries = append(entries, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("activity", "list", "failed to iterate activity", err)
	}
	return entries, nil
}
