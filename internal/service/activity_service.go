package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/events"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/store"
)

// ActivityService exposes a task's activity log.
type ActivityService interface {
	// ListActivity returns the task's entries, newest first.
	ListActivity(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error)
}

type activityServiceImpl struct {
	activities store.ActivityStore
	logger     *slog.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activities store.ActivityStore, logger *slog.Logger) (ActivityService, error) {
	if activities == nil {
		return nil, &ServiceError{Service: "activity", Operation: "create_service", Message: "activities cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &activityServiceImpl{
		activities: activities,
		logger:     logger.With(slog.String("component", "activity_service")),
	}, nil
}

// ListActivity implements ActivityService.
func (s *activityServiceImpl) ListActivity(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error) {
	entries, err := s.activities.ListByTask(ctx, taskID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list activity",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewServiceError("activity", "list_activity", "failed to list activity", err)
	}
	return entries, nil
}

// recordActivity writes one log entry through the transaction-bound store.
func recordActivity(
	ctx context.Context,
	activities store.ActivityStore,
	taskID uuid.UUID,
	username, action string,
) (*domain.Activity, error) {
	entry, err := domain.NewActivity(taskID, username, action)
	if err != nil {
		return nil, err
	}
	if err := activities.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// emitActivity announces committed entries. Failures are logged only.
func emitActivity(ctx context.Context, emitter events.EventEmitter, log *slog.Logger, entries ...*domain.Activity) {
	for _, entry := range entries {
		event, err := events.NewEvent(events.TypeActivityRecorded, entry.TaskID, entry)
		if err != nil {
			log.Error("failed to build activity event", slog.String("error", err.Error()))
			continue
		}
		if err := emitter.EmitEvent(ctx, event); err != nil {
			log.Warn("failed to emit activity event",
				slog.String("error", err.Error()),
				slog.String("task_id", entry.TaskID.String()),
				slog.String("action", entry.Action))
		}
	}
}
