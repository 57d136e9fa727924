package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasklist-api/internal/api/shared"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/phrazzld/tasklist-api/internal/service"
)

// TaskIDParam is the chi URL parameter holding a task ID.
const TaskIDParam = "id"

// TaskHandler handles the /todoitems endpoints.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /todoitems?status=&category=&search=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	query := r.URL.Query()
	status, err := domain.ParseTaskStatus(query.Get("status"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	filter := domain.TaskFilter{
		Status:   status,
		Category: query.Get("category"),
		Search:   query.Get("search"),
	}

	tasks, err := h.tasks.List(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// ListCategories handles GET /todoitems/categories.
func (h *TaskHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	categories, err := h.tasks.Categories(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, categories)
}

// GetTask handles GET /todoitems/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathID(w, r, TaskIDParam, log)
	if !ok {
		return
	}

	task, found, err := h.tasks.GetByID(r.Context(), id, userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgTaskNotFound)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// CreateTask handles POST /todoitems.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("task created", slog.Int64("task_id", task.ID))
	w.Header().Set("Location", fmt.Sprintf("/todoitems/%d", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// UpdateTask handles PUT /todoitems/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathID(w, r, TaskIDParam, log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	found, err := h.tasks.Update(r.Context(), id, userID, req.ToPatch())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgTaskNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteTask handles DELETE /todoitems/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathID(w, r, TaskIDParam, log)
	if !ok {
		return
	}

	found, err := h.tasks.Delete(r.Context(), id, userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgTaskNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
