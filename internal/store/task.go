package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
)

// TaskFilter narrows task listings. Zero values mean "no constraint".
type TaskFilter struct {
	UserID  uuid.UUID
	Status  domain.TaskStatus
	DueDate time.Time
}

// TaskPage is one page of a task listing with the total row count for the
// filter, used to shape pagination metadata.
type TaskPage struct {
	Tasks []*domain.Task
	Total int64
}

// TaskStore defines the interface for task data persistence.
//
// Save and Delete are version-checked (see UserStore). The Find* predicate
// lookups always filter on current, live state so that sweeps re-derive
// pending work idempotently instead of consuming a durable queue.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID regardless of owner.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDAndUserID retrieves a task owned by the given user.
	// Returns ErrTaskNotFound if the task does not exist or belongs to
	// someone else; ownership is not revealed to the caller.
	GetByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// List returns a page of tasks matching the filter, ordered by status
	// then due date, with offset/limit paging.
	List(ctx context.Context, filter TaskFilter, offset, limit int) (*TaskPage, error)

	// Save persists all mutable fields of an existing task.
	// Returns ErrTaskNotFound or ErrVersionConflict accordingly.
	Save(ctx context.Context, task *domain.Task) error

	// Delete permanently removes a task, verifying the given version.
	// Returns ErrTaskNotFound or ErrVersionConflict accordingly.
	Delete(ctx context.Context, id uuid.UUID, version int64) error

	// FindOverdue lists IN_PROGRESS tasks whose due date is before today.
	FindOverdue(ctx context.Context, today time.Time) ([]*domain.Task, error)

	// FindByStatusUpdatedBefore lists tasks in the given status whose last
	// update is older than the cutoff. Used by the retention sweeps.
	FindByStatusUpdatedBefore(ctx context.Context, status domain.TaskStatus, cutoff time.Time) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
