package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	// Create saves a comment. Returns ErrTaskNotFound if the task is gone.
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByTask returns a task's comments, oldest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)

	// WithTx returns a new CommentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CommentStore
}
