package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/events"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/store"
)

// TaskService provides task operations.
type TaskService interface {
	// CreateTask creates a task owned by the actor. input.Title is required;
	// other nil fields take their defaults.
	CreateTask(ctx context.Context, actor Actor, input domain.TaskUpdate) (*domain.Task, error)

	// ListTasks returns matching tasks, newest first.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)

	// GetTask retrieves a task or ErrTaskNotFound.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update. Any authenticated user may update
	// any task.
	UpdateTask(ctx context.Context, actor Actor, taskID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task with its comments, attachments and activity.
	// Only the creator may delete; others get ErrNotOwned.
	DeleteTask(ctx context.Context, actor Actor, taskID uuid.UUID) error
}

type taskServiceImpl struct {
	tasks       store.TaskStore
	attachments store.AttachmentStore
	activities  store.ActivityStore
	tx          store.Transactor
	emitter     events.EventEmitter
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	attachments store.AttachmentStore,
	activities store.ActivityStore,
	tx store.Transactor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil || attachments == nil || activities == nil || tx == nil || emitter == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "dependencies cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:       tasks,
		attachments: attachments,
		activities:  activities,
		tx:          tx,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(ctx context.Context, actor Actor, input domain.TaskUpdate) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var title string
	if input.Title != nil {
		title = *input.Title
	}
	task, err := domain.NewTask(actor.UserID, title)
	if err != nil {
		return nil, err
	}
	input.Title = nil
	if _, err := task.Apply(input); err != nil {
		return nil, err
	}
	task.UpdatedAt = task.CreatedAt

	var entry *domain.Activity
	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}
		created, err := recordActivity(ctx, s.activities.WithTx(tx), task.ID, actor.Username, domain.ActionCreatedTask)
		entry = created
		return err
	})
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", actor.UserID.String()))
		return nil, NewServiceError("task", "create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", actor.UserID.String()))
	emitActivity(ctx, s.emitter, log, entry)
	return task, nil
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, NewServiceError("task", "list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// GetTask implements TaskService.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		return nil, NewServiceError("task", "get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// UpdateTask implements TaskService. A status change and other field
// changes are logged as separate activity entries. An update that changes
// nothing writes nothing.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	actor Actor,
	taskID uuid.UUID,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		task    *domain.Task
		entries []*domain.Activity
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		var err error
		task, err = tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		changes, err := task.Apply(update)
		if err != nil {
			return err
		}
		if !changes.Any() {
			return nil
		}

		if err := tasks.Update(ctx, task); err != nil {
			return err
		}

		activities := s.activities.WithTx(tx)
		if changes.StatusChanged {
			entry, err := recordActivity(ctx, activities, task.ID, actor.Username, domain.ActionStatusChanged(task.Status))
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		if changes.FieldsChanged {
			entry, err := recordActivity(ctx, activities, task.ID, actor.Username, domain.ActionUpdatedTask)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Warn("failed to update task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		return nil, NewServiceError("task", "update_task", "failed to update task", err)
	}

	if len(entries) > 0 {
		log.Info("task updated",
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", actor.UserID.String()))
	}
	emitActivity(ctx, s.emitter, log, entries...)
	return task, nil
}

// DeleteTask implements TaskService. The deletion event carries the stored
// attachment names so their blobs can be removed in the background.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor Actor, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var filenames []string
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if !task.IsOwnedBy(actor.UserID) {
			return ErrNotOwned
		}

		attachments, err := s.attachments.WithTx(tx).ListByTask(ctx, taskID)
		if err != nil {
			return err
		}
		for _, a := range attachments {
			filenames = append(filenames, a.Filename)
		}

		return tasks.Delete(ctx, taskID)
	})
	if err != nil {
		if errors.Is(err, ErrNotOwned) {
			log.Debug("delete refused for non-owner",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", actor.UserID.String()))
		} else if !store.IsNotFoundError(err) {
			log.Error("failed to delete task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		return NewServiceError("task", "delete_task", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", actor.UserID.String()),
		slog.Int("attachment_count", len(filenames)))

	event, err := events.NewEvent(events.TypeTaskDeleted, taskID, events.TaskDeletedPayload{
		TaskID:    taskID,
		DeletedBy: actor.Username,
		Filenames: filenames,
	})
	if err != nil {
		log.Error("failed to build task deleted event", slog.String("error", err.Error()))
		return nil
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit task deleted event",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
	}
	return nil
}
