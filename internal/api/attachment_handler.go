package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/redact"
	"github.com/phrazzld/taskmaster/internal/service"
)

// UploadField is the multipart field carrying the file.
const UploadField = "file"

// multipartOverhead allows for part headers and boundaries on top of the
// file size limit.
const multipartOverhead = 64 << 10

// AttachmentHandler handles attachment uploads, listings and downloads.
type AttachmentHandler struct {
	attachments    service.AttachmentService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAttachmentHandler creates a new AttachmentHandler. Uploads larger than
// maxUploadBytes are rejected with 413.
func NewAttachmentHandler(
	attachments service.AttachmentService,
	maxUploadBytes int64,
	logger *slog.Logger,
) *AttachmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttachmentHandler{
		attachments:    attachments,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "attachment_handler")),
	}
}

// Upload handles POST /api/attachments/{taskId} with a multipart "file" field.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromRequest(w, r, log)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskId", log)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	part, err := h.filePart(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, &http.MaxBytesError{Limit: h.maxUploadBytes}, "")
			return
		}
		log.Debug("invalid upload", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = part.Close() }()

	contentType := part.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.attachments.AddAttachment(r.Context(), actor, taskID, service.Upload{
		OriginalName: cleanFileName(part.FileName()),
		ContentType:  contentType,
		Content:      http.MaxBytesReader(w, part, h.maxUploadBytes),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upload file")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, attachment)
}

// filePart advances the multipart stream to the upload field.
func (h *AttachmentHandler) filePart(r *http.Request) (*multipart.Part, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := reader.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == UploadField && part.FileName() != "" {
			return part, nil
		}
		// Skip other fields.
		if _, err := io.Copy(io.Discard, part); err != nil {
			return nil, err
		}
	}
}

// ListAttachments handles GET /api/attachments/{taskId}, newest first.
func (h *AttachmentHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := pathUUID(w, r, "taskId", log)
	if !ok {
		return
	}

	attachments, err := h.attachments.ListAttachments(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list attachments")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, attachments)
}

// ServeUpload handles GET /uploads/{name}, streaming a stored attachment.
func (h *AttachmentHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	attachment, content, err := h.attachments.OpenAttachment(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read file")
		return
	}
	defer func() { _ = content.Close() }()

	header := w.Header()
	header.Set("Content-Type", attachment.ContentType)
	header.Set("Content-Length", strconv.FormatInt(attachment.Size, 10))
	header.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": attachment.OriginalName,
	}))
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("Cache-Control", "public, max-age=31536000, immutable")
	if attachment.Checksum != "" {
		header.Set("ETag", `"`+attachment.Checksum+`"`)
		if match := r.Header.Get("If-None-Match"); match == `"`+attachment.Checksum+`"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, content); err != nil {
		log.Warn("failed to stream upload",
			slog.String("error", redact.Error(err)),
			slog.String("filename", attachment.Filename))
	}
}

// cleanFileName keeps only the base name a browser sent.
func cleanFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
