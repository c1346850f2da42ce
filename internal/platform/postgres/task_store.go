package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/store"
)

const taskColumns = `id, title, assignee, deadline, status, priority, category, created_by, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Assignee,
		nullTime(task),
		string(task.Status),
		string(task.Priority),
		task.Category,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", task.CreatedBy.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "failed to query task", MapError(err))
	}

	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conditions []string
		args       []any
	)
	where := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Status != "" {
		where("status", string(filter.Status))
	}
	if filter.Priority != "" {
		where("priority", string(filter.Priority))
	}
	if filter.Category != "" {
		where("category", filter.Category)
	}
	if filter.Assignee != "" {
		where("assignee", filter.Assignee)
	}
	if filter.CreatedBy != uuid.Nil {
		where("created_by", filter.CreatedBy)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to iterate tasks", err)
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, assignee = $2, deadline = $3, status = $4,
		    priority = $5, category = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Assignee,
		nullTime(task),
		string(task.Status),
		string(task.Priority),
		task.Category,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		}
		return err
	}

	return nil
}

// Delete implements store.TaskStore.Delete. Comments, attachments and
// activity go with the task through ON DELETE CASCADE.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task deleted", slog.String("task_id", id.String()))
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		deadline sql.NullTime
		status   string
		priority string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Assignee,
		&deadline,
		&status,
		&priority,
		&task.Category,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.Priority(priority)
	if deadline.Valid {
		d := deadline.Time.UTC()
		task.Deadline = &d
	}
	return &task, nil
}

func nullTime(task *domain.Task) sql.NullTime {
	if task.Deadline == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *task.Deadline, Valid: true}
}
