package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/events"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
)

// BlobDeleter is the subset of storage.Blob the cleanup job needs.
type BlobDeleter interface {
	Delete(ctx context.Context, name string) error
}

// BlobCleanupJob deletes the stored attachment files of a deleted task.
type BlobCleanupJob struct {
	id        uuid.UUID
	taskID    uuid.UUID
	filenames []string
	blobs     BlobDeleter
}

var _ Job = (*BlobCleanupJob)(nil)

// NewBlobCleanupJob creates a cleanup job for the given files.
func NewBlobCleanupJob(taskID uuid.UUID, filenames []string, blobs BlobDeleter) *BlobCleanupJob {
	return &BlobCleanupJob{
		id:        uuid.New(),
		taskID:    taskID,
		filenames: filenames,
		blobs:     blobs,
	}
}

// ID implements Job.
func (j *BlobCleanupJob) ID() uuid.UUID { return j.id }

// Type implements Job.
func (j *BlobCleanupJob) Type() string { return TypeBlobCleanup }

// TaskID returns the task whose files are removed.
func (j *BlobCleanupJob) TaskID() uuid.UUID { return j.taskID }

// Filenames returns the stored names the job will delete.
func (j *BlobCleanupJob) Filenames() []string { return j.filenames }

// Execute deletes every file, continuing past failures. The returned error
// joins all individual failures.
func (j *BlobCleanupJob) Execute(ctx context.Context) error {
	log := logger.FromContext(ctx).With(slog.String("task_id", j.taskID.String()))

	var errs []error
	for _, name := range j.filenames {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := j.blobs.Delete(ctx, name); err != nil {
			log.Warn("failed to delete attachment blob",
				slog.String("filename", name),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	log.Info("attachment blobs removed", slog.Int("count", len(j.filenames)))
	return nil
}

// CleanupEventHandler turns task.deleted events into BlobCleanupJobs.
type CleanupEventHandler struct {
	queue  QueueWriter
	blobs  BlobDeleter
	logger *slog.Logger
}

var _ events.EventHandler = (*CleanupEventHandler)(nil)

// NewCleanupEventHandler creates a handler that enqueues cleanup jobs on queue.
func NewCleanupEventHandler(queue QueueWriter, blobs BlobDeleter, log *slog.Logger) *CleanupEventHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CleanupEventHandler{
		queue:  queue,
		blobs:  blobs,
		logger: log.With(slog.String("component", "cleanup_event_handler")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *CleanupEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeTaskDeleted {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, h.logger)

	var payload events.TaskDeletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		log.Error("failed to unmarshal payload",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if len(payload.Filenames) == 0 {
		return nil
	}

	job := NewBlobCleanupJob(payload.TaskID, payload.Filenames, h.blobs)
	if err := h.queue.Enqueue(job); err != nil {
		log.Error("failed to enqueue blob cleanup",
			slog.String("error", err.Error()),
			slog.String("task_id", payload.TaskID.String()),
			slog.Int("file_count", len(payload.Filenames)))
		return fmt.Errorf("failed to enqueue blob cleanup: %w", err)
	}

	log.Debug("blob cleanup enqueued",
		slog.String("job_id", job.ID().String()),
		slog.String("task_id", payload.TaskID.String()))
	return nil
}
