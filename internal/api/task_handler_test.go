package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicentejluz/taskmanager/internal/api/shared"
	"github.com/vicentejluz/taskmanager/internal/domain"
)

// taskRouter mounts the task routes behind a stub of the authentication
// middleware that injects the given user ID.
func (f *apiFixture) taskRouter(userID uuid.UUID) chi.Router {
	h := NewTaskHandler(f.tasks)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != uuid.Nil {
				r = r.WithContext(context.WithValue(r.Context(), shared.UserIDContextKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/tasks", h.Create)
	r.Get("/tasks", h.List)
	r.Get("/tasks/{id}", h.Get)
	r.Put("/tasks/{id}", h.Update)
	r.Post("/tasks/{id}/done", h.Done)
	r.Post("/tasks/{id}/cancel", h.Cancel)
	r.Delete("/tasks/{id}", h.Delete)
	return r
}

func (f *apiFixture) seedTask(t *testing.T, userID uuid.UUID, status domain.TaskStatus, dueDate time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(userID, "seeded task", "", dueDate)
	require.NoError(t, err)
	task.Status = status
	f.taskStore.Seed(task)
	return task
}

func getPath(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTaskEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("create returns the stored task", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		router := f.taskRouter(uuid.New())

		due := time.Now().AddDate(0, 0, 3).Format(dateLayout)
		rec := postJSON(t, router, "/tasks", CreateTaskRequest{
			Title: "write report", Description: "quarterly numbers", DueDate: due,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "IN_PROGRESS", resp.Status)
		assert.Equal(t, due, resp.DueDate)
	})

	t.Run("create rejects a past due date", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		router := f.taskRouter(uuid.New())

		rec := postJSON(t, router, "/tasks", CreateTaskRequest{
			Title:   "too late",
			DueDate: time.Now().AddDate(0, 0, -1).Format(dateLayout),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create rejects a malformed due date", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		router := f.taskRouter(uuid.New())

		rec := postJSON(t, router, "/tasks", CreateTaskRequest{
			Title: "bad date", DueDate: "31/12/2026",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("requests without authentication are rejected", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		router := f.taskRouter(uuid.Nil)

		rec := getPath(t, router, "/tasks")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("list pages and filters by status", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		userID := uuid.New()
		router := f.taskRouter(userID)

		for i := 0; i < 3; i++ {
			f.seedTask(t, userID, domain.TaskStatusInProgress, time.Now().AddDate(0, 0, i+1))
		}
		f.seedTask(t, userID, domain.TaskStatusDone, time.Now().AddDate(0, 0, 1))
		f.seedTask(t, uuid.New(), domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 1))

		rec := getPath(t, router, "/tasks?status=in_progress&page=0&size=2")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, int64(3), resp.Total)
		assert.Equal(t, int64(2), resp.TotalPages)
	})

	t.Run("list rejects an unknown status value", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		router := f.taskRouter(uuid.New())

		rec := getPath(t, router, "/tasks?status=someday")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("done and cancel transition the task", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		userID := uuid.New()
		router := f.taskRouter(userID)
		task := f.seedTask(t, userID, domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 1))

		rec := postJSON(t, router, "/tasks/"+task.ID.String()+"/done", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "DONE", resp.Status)

		// A terminal task cannot be cancelled.
		rec = postJSON(t, router, "/tasks/"+task.ID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("another user's task is a 404", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		task := f.seedTask(t, uuid.New(), domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 1))

		router := f.taskRouter(uuid.New())
		rec := getPath(t, router, "/tasks/"+task.ID.String())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete removes the task", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture()
		userID := uuid.New()
		router := f.taskRouter(userID)
		task := f.seedTask(t, userID, domain.TaskStatusInProgress, time.Now().AddDate(0, 0, 1))

		req := httptest.NewRequest(http.MethodDelete, "/tasks/"+task.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, f.taskStore.Count())
	})
}
