package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// TaskHandler handles the globally-scoped relational task endpoints. There
// is no owner on these records: any caller may read or mutate any task.
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
// If logger is nil, the default logger is used.
func NewTaskHandler(taskStore store.TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_handler")),
	}
}

// List handles GET /tasks. When the request carries page or limit
// parameters the response is paginated; otherwise it is the flat list
// shape with a count.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
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

		page, err := h.taskStore.ListPage(r.Context(), filters, pageReq)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to retrieve tasks")
			return
		}

		shared.RespondWithPage(w, r, "Tasks retrieved successfully",
			page.Items, paginationFromPage(page))
		return
	}

	tasks, err := h.taskStore.List(r.Context(), filters)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithList(w, r, "Tasks retrieved successfully", tasks, len(tasks))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathInt64(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Task retrieved successfully", task)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := domain.NewTask(req.Title, req.Description, domain.Priority(req.Priority), req.DueDate)
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

// Update handles PUT /tasks/{id}. Absent fields are left untouched; an
// empty body returns the record unchanged.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathInt64(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskStore.Update(r.Context(), id, req.toUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Task updated successfully", task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathInt64(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deleted, err := h.taskStore.Delete(r.Context(), id)
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

// Complete handles PATCH /tasks/{id}/complete.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, true, "Task marked as completed")
}

// Uncomplete handles PATCH /tasks/{id}/uncomplete.
func (h *TaskHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, false, "Task marked as not completed")
}

func (h *TaskHandler) setCompleted(w http.ResponseWriter, r *http.Request, completed bool, message string) {
	id, err := getPathInt64(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.Update(r.Context(), id, domain.TaskUpdate{Completed: &completed})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, message, task)
}

// ByStatus handles GET /tasks/status/{completed}.
func (h *TaskHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	completed, err := strconv.ParseBool(chi.URLParam(r, "completed"))
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("completed", "must be true or false"), "")
		return
	}

	tasks, err := h.taskStore.ByStatus(r.Context(), completed)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithList(w, r, "Tasks retrieved successfully", tasks, len(tasks))
}

// ByPriority handles GET /tasks/priority/{priority}.
func (h *TaskHandler) ByPriority(w http.ResponseWriter, r *http.Request) {
	priority := domain.Priority(chi.URLParam(r, "priority"))
	if !priority.Valid() {
		HandleAPIError(w, r, domain.NewValidationError("priority", "must be one of low, medium, high"), "")
		return
	}

	tasks, err := h.taskStore.ByPriority(r.Context(), priority)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithList(w, r, "Tasks retrieved successfully", tasks, len(tasks))
}
