package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadsPath is the URL prefix under which stored attachment blobs are served.
const UploadsPath = "/uploads/"

// Attachment validation errors
var (
	ErrEmptyAttachmentTaskID = validationError("attachment task ID cannot be empty")
	ErrEmptyFilename         = validationError("stored file name cannot be empty")
	ErrInvalidFilename       = validationError("stored file name must not contain path separators")
	ErrEmptyOriginalName     = validationError("original file name cannot be empty")
	ErrNegativeSize          = validationError("file size cannot be negative")
	ErrEmptyUploader         = validationError("attachment uploader cannot be empty")
)

// Attachment describes a file uploaded to a task. The bytes live in blob
// storage under Filename.
type Attachment struct {
	ID           uuid.UUID `json:"id"`
	TaskID       uuid.UUID `json:"task_id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAttachment records a stored blob against a task.
func NewAttachment(
	taskID uuid.UUID,
	uploadedBy, filename, originalName, contentType string,
	size int64,
	checksum string,
) (*Attachment, error) {
	a := &Attachment{
		ID:           uuid.New(),
		TaskID:       taskID,
		Filename:     filename,
		OriginalName: originalName,
		URL:          AttachmentURL(filename),
		ContentType:  contentType,
		Size:         size,
		Checksum:     checksum,
		UploadedBy:   uploadedBy,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// AttachmentURL returns the public path for a stored file name.
func AttachmentURL(filename string) string {
	return UploadsPath + filename
}

// Validate checks if the Attachment has valid data.
func (a *Attachment) Validate() error {
	if a.TaskID == uuid.Nil {
		return ErrEmptyAttachmentTaskID
	}
	if a.Filename == "" {
		return ErrEmptyFilename
	}
	if strings.ContainsAny(a.Filename, `/\`) || a.Filename == "." || a.Filename == ".." {
		return ErrInvalidFilename
	}
	if a.OriginalName == "" {
		return ErrEmptyOriginalName
	}
	if a.Size < 0 {
		return ErrNegativeSize
	}
	if a.UploadedBy == "" {
		return ErrEmptyUploader
	}
	return nil
}
