package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/events"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/storage"
	"github.com/phrazzld/taskmaster/internal/store"
)

// Upload is a file received from a client.
type Upload struct {
	OriginalName string
	ContentType  string
	Content      io.Reader
}

// AttachmentService provides task attachment operations.
type AttachmentService interface {
	// AddAttachment stores the upload and records it against the task.
	AddAttachment(ctx context.Context, actor Actor, taskID uuid.UUID, upload Upload) (*domain.Attachment, error)

	// ListAttachments returns a task's attachments, newest first.
	ListAttachments(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error)

	// OpenAttachment returns the metadata and content of a stored file.
	// The caller must close the reader.
	OpenAttachment(ctx context.Context, filename string) (*domain.Attachment, io.ReadCloser, error)
}

type attachmentServiceImpl struct {
	tasks       store.TaskStore
	attachments store.AttachmentStore
	activities  store.ActivityStore
	tx          store.Transactor
	blobs       storage.Blob
	emitter     events.EventEmitter
	logger      *slog.Logger
}

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(
	tasks store.TaskStore,
	attachments store.AttachmentStore,
	activities store.ActivityStore,
	tx store.Transactor,
	blobs storage.Blob,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (AttachmentService, error) {
	if tasks == nil || attachments == nil || activities == nil || tx == nil || blobs == nil || emitter == nil {
		return nil, &ServiceError{Service: "attachment", Operation: "create_service", Message: "dependencies cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &attachmentServiceImpl{
		tasks:       tasks,
		attachments: attachments,
		activities:  activities,
		tx:          tx,
		blobs:       blobs,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "attachment_service")),
	}, nil
}

// AddAttachment implements AttachmentService. The blob is written before the
// row; if the transaction fails the blob is removed again.
func (s *attachmentServiceImpl) AddAttachment(
	ctx context.Context,
	actor Actor,
	taskID uuid.UUID,
	upload Upload,
) (*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, NewServiceError("attachment", "add_attachment", "failed to retrieve task", err)
	}

	obj, err := s.blobs.Save(ctx, upload.OriginalName, upload.ContentType, upload.Content)
	if err != nil {
		log.Error("failed to store upload",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewServiceError("attachment", "add_attachment", "failed to store file", err)
	}

	attachment, err := domain.NewAttachment(
		taskID, actor.Username, obj.Name, upload.OriginalName, upload.ContentType, obj.Size, obj.Checksum,
	)
	if err != nil {
		s.removeBlob(ctx, log, obj.Name)
		return nil, err
	}

	var entry *domain.Activity
	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.attachments.WithTx(tx).Create(ctx, attachment); err != nil {
			return err
		}
		created, err := recordActivity(ctx, s.activities.WithTx(tx), taskID, actor.Username,
			domain.ActionUploadedFile(attachment.OriginalName))
		entry = created
		return err
	})
	if err != nil {
		s.removeBlob(ctx, log, obj.Name)
		if !store.IsNotFoundError(err) {
			log.Error("failed to save attachment",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		return nil, NewServiceError("attachment", "add_attachment", "failed to save attachment", err)
	}

	log.Info("attachment added",
		slog.String("attachment_id", attachment.ID.String()),
		slog.String("task_id", taskID.String()),
		slog.Int64("size", attachment.Size))
	emitActivity(ctx, s.emitter, log, entry)
	return attachment, nil
}

// removeBlob deletes a stored upload that will not be recorded. It runs even
// when the request context is already cancelled.
func (s *attachmentServiceImpl) removeBlob(ctx context.Context, log *slog.Logger, name string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), name); err != nil {
		log.Error("failed to remove orphaned blob",
			slog.String("error", err.Error()),
			slog.String("filename", name))
	}
}

// ListAttachments implements AttachmentService.
func (s *attachmentServiceImpl) ListAttachments(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	attachments, err := s.attachments.ListByTask(ctx, taskID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list attachments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewServiceError("attachment", "list_attachments", "failed to list attachments", err)
	}
	return attachments, nil
}

// OpenAttachment implements AttachmentService. Only files recorded in the
// database are served.
func (s *attachmentServiceImpl) OpenAttachment(
	ctx context.Context,
	filename string,
) (*domain.Attachment, io.ReadCloser, error) {
	if err := storage.ValidateName(filename); err != nil {
		return nil, nil, ErrAttachmentNotFound
	}

	attachment, err := s.attachments.GetByFilename(ctx, filename)
	if err != nil {
		return nil, nil, NewServiceError("attachment", "open_attachment", "failed to retrieve attachment", err)
	}

	content, err := s.blobs.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Warn("attachment row without blob",
				slog.String("filename", filename))
			return nil, nil, ErrAttachmentNotFound
		}
		return nil, nil, NewServiceError("attachment", "open_attachment", "failed to open file", err)
	}
	return attachment, content, nil
}
