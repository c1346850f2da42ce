package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/store"
)

const attachmentColumns = `id, task_id, filename, original_name, url, content_type, size, checksum, uploaded_by, created_at`

// PostgresAttachmentStore implements store.AttachmentStore on PostgreSQL.
type PostgresAttachmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.AttachmentStore = (*PostgresAttachmentStore)(nil)

// NewPostgresAttachmentStore creates an attachment store. A nil logger means slog.Default().
func NewPostgresAttachmentStore(db store.DBTX, logger *slog.Logger) *PostgresAttachmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAttachmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "attachment_store")),
	}
}

// WithTx implements store.AttachmentStore.WithTx
func (s *PostgresAttachmentStore) WithTx(tx *sql.Tx) store.AttachmentStore {
	return &PostgresAttachmentStore{db: tx, logger: s.logger}
}

// Create implements store.AttachmentStore.Create
func (s *PostgresAttachmentStore) Create(ctx context.Context, a *domain.Attachment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (`+attachmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		a.ID, a.TaskID, a.Filename, a.OriginalName, a.URL,
		a.ContentType, a.Size, a.Checksum, a.UploadedBy, a.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create attachment",
			slog.String("error", err.Error()),
			slog.String("task_id", a.TaskID.String()),
			slog.String("filename", a.Filename))
		return store.NewStoreError("attachment", "create", "failed to insert attachment", mapTaskReference(err))
	}
	return nil
}

// ListByTask implements store.AttachmentStore.ListByTask
func (s *PostgresAttachmentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attachmentColumns+`
		FROM attachments
		WHERE task_id = $1
		ORDER BY created_at DESC, id DESC
	`, taskID)
	if err != nil {
		log.Error("failed to list attachments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("attachment", "list", "failed to query attachments", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	attachments := make([]*domain.Attachment, 0)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, store.NewStoreError("attachment", "list", "failed to scan attachment", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("attachment", "list", "failed to iterate attachments", err)
	}
	return attachments, nil
}

// GetByFilename implements store.AttachmentStore.GetByFilename
func (s *PostgresAttachmentStore) GetByFilename(ctx context.Context, filename string) (*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	a, err := scanAttachment(s.db.QueryRowContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE filename = $1`, filename))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttachmentNotFound
		}
		log.Error("failed to get attachment",
			slog.String("error", err.Error()),
			slog.String("filename", filename))
		return nil, store.NewStoreError("attachment", "get", "failed to query attachment", MapError(err))
	}
	return a, nil
}

func scanAttachment(row rowScanner) (*domain.Attachment, error) {
	var a domain.Attachment
	if err := row.Scan(
		&a.ID, &a.TaskID, &a.Filename, &a.OriginalName, &a.URL,
		&a.ContentType, &a.Size, &a.Checksum, &a.UploadedBy, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
