package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/api/shared"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due_date, expected YYYY-MM-DD")
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, req.Title, req.Description, dueDate)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles GET /tasks with optional status, due_date, page and size
// query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var status domain.TaskStatus
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, ok := domain.ParseTaskStatus(s)
		if !ok {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown status value")
			return
		}
		status = parsed
	}

	var dueDate time.Time
	if d := r.URL.Query().Get("due_date"); d != "" {
		parsed, err := time.Parse(dateLayout, d)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due_date, expected YYYY-MM-DD")
			return
		}
		dueDate = parsed
	}

	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", defaultPageSize)
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	result, err := h.taskService.List(r.Context(), userID, status, dueDate, page*size, size)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	items := make([]TaskResponse, len(result.Tasks))
	for i, t := range result.Tasks {
		items[i] = NewTaskResponse(t)
	}

	totalPages := result.Total / int64(size)
	if result.Total%int64(size) != 0 {
		totalPages++
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PageResponse{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      result.Total,
		TotalPages: totalPages,
	})
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := userAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := userAndTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due_date, expected YYYY-MM-DD")
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, req.Title, req.Description, dueDate)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Done handles POST /tasks/{id}/done.
func (h *TaskHandler) Done(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := userAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Done(r.Context(), userID, taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Cancel handles POST /tasks/{id}/cancel.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := userAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Cancel(r.Context(), userID, taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := userAndTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AdminDelete handles DELETE /admin/tasks/{id}.
func (h *TaskHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskService.AdminDelete(r.Context(), taskID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the authentication middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, param))
}

// userAndTaskID extracts the authenticated user ID and the task ID path
// parameter, writing the error response itself when either is missing.
func userAndTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, taskID, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
