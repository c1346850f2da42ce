package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
)

// TaskFilter narrows a task listing. Zero values match everything.
type TaskFilter struct {
	Status    domain.TaskStatus
	Priority  domain.Priority
	Category  string
	Assignee  string
	CreatedBy uuid.UUID
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the tasks matching filter, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update persists every mutable field of task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task together with its comments, attachments and
	// activity. Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
