package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/service"
)

// ActivityHandler serves a task's activity log.
type ActivityHandler struct {
	activity service.ActivityService
	logger   *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activity service.ActivityService, logger *slog.Logger) *ActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With(slog.String("component", "activity_handler")),
	}
}

// ListActivity handles GET /api/activity/{taskId}, newest first.
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := pathUUID(w, r, "taskId", log)
	if !ok {
		return
	}

	entries, err := h.activity.ListActivity(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list activity")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}
