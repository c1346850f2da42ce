package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/events"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/store"
)

// CommentService provides task comment operations.
type CommentService interface {
	// AddComment posts text on a task as the actor. Returns ErrTaskNotFound
	// for an unknown task.
	AddComment(ctx context.Context, actor Actor, taskID uuid.UUID, text string) (*domain.Comment, error)

	// ListComments returns a task's comments, oldest first.
	ListComments(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)
}

type commentServiceImpl struct {
	tasks      store.TaskStore
	comments   store.CommentStore
	activities store.ActivityStore
	tx         store.Transactor
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	tasks store.TaskStore,
	comments store.CommentStore,
	activities store.ActivityStore,
	tx store.Transactor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (CommentService, error) {
	if tasks == nil || comments == nil || activities == nil || tx == nil || emitter == nil {
		return nil, &ServiceError{Service: "comment", Operation: "create_service", Message: "dependencies cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &commentServiceImpl{
		tasks:      tasks,
		comments:   comments,
		activities: activities,
		tx:         tx,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "comment_service")),
	}, nil
}

// AddComment implements CommentService.
func (s *commentServiceImpl) AddComment(
	ctx context.Context,
	actor Actor,
	taskID uuid.UUID,
	text string,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	comment, err := domain.NewComment(taskID, actor.Username, text)
	if err != nil {
		return nil, err
	}

	var entry *domain.Activity
	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.tasks.WithTx(tx).GetByID(ctx, taskID); err != nil {
			return err
		}
		if err := s.comments.WithTx(tx).Create(ctx, comment); err != nil {
			return err
		}
		created, err := recordActivity(ctx, s.activities.WithTx(tx), taskID, actor.Username, domain.ActionCommented)
		entry = created
		return err
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to add comment",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		return nil, NewServiceError("comment", "add_comment", "failed to save comment", err)
	}

	log.Debug("comment added",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", taskID.String()))
	emitActivity(ctx, s.emitter, log, entry)
	return comment, nil
}

// ListComments implements CommentService.
func (s *commentServiceImpl) ListComments(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewServiceError("comment", "list_comments", "failed to list comments", err)
	}
	return comments, nil
}
