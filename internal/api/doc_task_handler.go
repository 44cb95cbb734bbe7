package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// DocTaskHandler handles the owner-scoped document task endpoints mounted
// under /v2/tasks. Every operation runs against the authenticated
// principal's tasks only; a foreign task id behaves exactly like a
// nonexistent one.
type DocTaskHandler struct {
	taskStore store.DocTaskStore
	logger    *slog.Logger
}

// NewDocTaskHandler creates a new DocTaskHandler with the given
// dependencies. If logger is nil, the default logger is used.
func NewDocTaskHandler(taskStore store.DocTaskStore, logger *slog.Logger) *DocTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &DocTaskHandler{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "doc_task_handler")),
	}
}

// List handles GET /v2/tasks, paginated when page or limit is present.
func (h *DocTaskHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	filters, err := parseTaskFilters(query)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if hasPageParams(query) {
		pageReq, err := parsePageRequest(query)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}

		page, err := h.taskStore.ListPage(r.Context(), principal.UserID, filters, pageReq)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to retrieve tasks")
			return
		}

		shared.RespondWithPage(w, r, "Tasks retrieved successfully",
			page.Items, paginationFromPage(page))
		return
	}

	tasks, err := h.taskStore.List(r.Context(), principal.UserID, filters)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithList(w, r, "Tasks retrieved successfully", tasks, len(tasks))
}

// Get handles GET /v2/tasks/{id}.
func (h *DocTaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Task retrieved successfully", task)
}

// Create handles POST /v2/tasks. The task is owned by the authenticated
// principal.
func (h *DocTaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req CreateDocTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	attachments := make([]domain.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, a.toDomain())
	}

	task, err := domain.NewDocTask(principal.UserID, req.Title, req.Description,
		domain.Priority(req.Priority), req.DueDate, req.Category, req.Tags, attachments)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, "Task created successfully", task)
}

// Update handles PUT /v2/tasks/{id}.
func (h *DocTaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req UpdateDocTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskStore.Update(r.Context(), principal.UserID, chi.URLParam(r, "id"), req.toUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Task updated successfully", task)
}

// Delete handles DELETE /v2/tasks/{id}.
func (h *DocTaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	deleted, err := h.taskStore.Delete(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	if !deleted {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Task deleted successfully", nil)
}

// Complete handles PATCH /v2/tasks/{id}/complete.
func (h *DocTaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, true, "Task marked as completed")
}

// Uncomplete handles PATCH /v2/tasks/{id}/uncomplete.
func (h *DocTaskHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, false, "Task marked as not completed")
}

func (h *DocTaskHandler) setCompleted(w http.ResponseWriter, r *http.Request, completed bool, message string) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	task, err := h.taskStore.Update(r.Context(), principal.UserID, chi.URLParam(r, "id"),
		domain.DocTaskUpdate{Completed: &completed})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, message, task)
}

// ByStatus handles GET /v2/tasks/status/{completed}.
func (h *DocTaskHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	completed, err := strconv.ParseBool(chi.URLParam(r, "completed"))
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("completed", "must be true or false"), "")
		return
	}

	tasks, err := h.taskStore.ByStatus(r.Context(), principal.UserID, completed)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithList(w, r, "Tasks retrieved successfully", tasks, len(tasks))
}

// ByPriority handles GET /v2/tasks/priority/{priority}.
func (h *DocTaskHandler) ByPriority(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	priority := domain.Priority(chi.URLParam(r, "priority"))
	if !priority.Valid() {
		HandleAPIError(w, r, domain.NewValidationError("priority", "must be one of low, medium, high"), "")
		return
	}

	tasks, err := h.taskStore.ByPriority(r.Context(), principal.UserID, priority)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithList(w, r, "Tasks retrieved successfully", tasks, len(tasks))
}

// ByCategory handles GET /v2/tasks/category/{category}.
func (h *DocTaskHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if category == "" {
		HandleAPIError(w, r, domain.NewValidationError("category", "is required"), "")
		return
	}

	tasks, err := h.taskStore.ByCategory(r.Context(), principal.UserID, category)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithList(w, r, "Tasks retrieved successfully", tasks, len(tasks))
}

// Overdue handles GET /v2/tasks/overdue.
func (h *DocTaskHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskStore.Overdue(r.Context(), principal.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve overdue tasks")
		return
	}

	shared.RespondWithList(w, r, "Overdue tasks retrieved successfully", tasks, len(tasks))
}

// Stats handles GET /v2/tasks/stats.
func (h *DocTaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	stats, err := h.taskStore.Stats(r.Context(), principal.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task statistics")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Task statistics retrieved successfully", stats)
}
