package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/service"
	"github.com/phrazzld/taskmaster/internal/store"
)

// TaskHandler handles /api/tasks requests.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks. Supported query filters are status,
// priority, category, assignee and mine=true.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromRequest(w, r, log)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r, actor)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromRequest(w, r, log)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), actor, req.toUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := pathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id}. Only supplied fields change.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromRequest(w, r, log)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), actor, taskID, req.toUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id}. Only the creator may delete.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromRequest(w, r, log)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), actor, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Task deleted"})
}

func parseTaskFilter(r *http.Request, actor service.Actor) (store.TaskFilter, error) {
	q := r.URL.Query()
	var filter store.TaskFilter

	if s := q.Get("status"); s != "" {
		status, err := domain.ParseTaskStatus(s)
		if err != nil {
			return store.TaskFilter{}, err
		}
		filter.Status = status
	}
	if p := q.Get("priority"); p != "" {
		priority, err := domain.ParsePriority(p)
		if err != nil {
			return store.TaskFilter{}, err
		}
		filter.Priority = priority
	}
	filter.Category = strings.TrimSpace(q.Get("category"))
	filter.Assignee = strings.TrimSpace(q.Get("assignee"))

	if mine, err := strconv.ParseBool(q.Get("mine")); err == nil && mine {
		filter.CreatedBy = actor.UserID
	}
	return filter, nil
}
