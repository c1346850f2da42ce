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

// PostgresCommentStore implements store.CommentStore on PostgreSQL.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CommentStore = (*PostgresCommentStore)(nil)

// NewPostgresCommentStore creates a comment store. A nil logger means slog.Default().
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

// WithTx implements store.CommentStore.WithTx
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &PostgresCommentStore{db: tx, logger: s.logger}
}

// Create implements store.CommentStore.Create
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, task_id, username, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.TaskID, comment.Username, comment.Text, comment.CreatedAt)
	if err != nil {
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("task_id", comment.TaskID.String()))
		return store.NewStoreError("comment", "create", "failed to insert comment", mapTaskReference(err))
	}
	return nil
}

// ListByTask implements store.CommentStore.ListByTask
func (s *PostgresCommentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, username, text, created_at
		FROM comments
		WHERE task_id = $1
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		log.Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("comment", "list", "failed to query comments", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Username, &c.Text, &c.CreatedAt); err != nil {
			return nil, store.NewStoreError("comment", "list", "failed to scan comment", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("comment", "list", "failed to iterate comments", err)
	}
	return comments, nil
}
