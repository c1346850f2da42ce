package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
)

// ActivityStore defines the interface for the per-task activity log.
type ActivityStore interface {
	// Create appends an entry. Returns ErrTaskNotFound if the task is gone.
	Create(ctx context.Context, activity *domain.Activity) error

	// ListByTask returns a task's activity, newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error)

	// WithTx returns a new ActivityStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ActivityStore
}
