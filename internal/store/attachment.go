package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
)

// AttachmentStore defines the interface for attachment metadata persistence.
type AttachmentStore interface {
	// Create saves attachment metadata. Returns ErrTaskNotFound if the task is gone.
	Create(ctx context.Context, attachment *domain.Attachment) error

	// ListByTask returns a task's attachments, newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error)

	// GetByFilename returns ErrAttachmentNotFound when no attachment uses filename.
	GetByFilename(ctx context.Context, filename string) (*domain.Attachment, error)

	// WithTx returns a new AttachmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AttachmentStore
}
