package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/service"
)

// CommentHandler handles /api/comments requests.
type CommentHandler struct {
	comments service.CommentService
	logger   *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments service.CommentService, logger *slog.Logger) *CommentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{
		comments: comments,
		logger:   logger.With(slog.String("component", "comment_handler")),
	}
}

// ListComments handles GET /api/comments/{taskId}, oldest first.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := pathUUID(w, r, "taskId", log)
	if !ok {
		return
	}

	comments, err := h.comments.ListComments(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list comments")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, comments)
}

// AddComment handles POST /api/comments/{taskId}.
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromRequest(w, r, log)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskId", log)
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	comment, err := h.comments.AddComment(r.Context(), actor, taskID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add comment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, comment)
}
