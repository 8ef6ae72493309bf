package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn func(ctx context.Context, task *domain.Task) error
	SaveFn   func(ctx context.Context, task *domain.Task) error
	DeleteFn func(ctx context.Context, id uuid.UUID, version int64) error

	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

// Ensure MockTaskStore implements store.TaskStore
var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Seed inserts a task directly, bypassing validation.
func (m *MockTaskStore) Seed(task *domain.Task) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *task
	m.tasks[task.ID] = &c
	return task
}

// Count returns the number of stored tasks.
func (m *MockTaskStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task.Version = 0
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	c := *task
	m.tasks[task.ID] = &c
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	c := *task
	return &c, nil
}

// GetByIDAndUserID implements the TaskStore interface
func (m *MockTaskStore) GetByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	c := *task
	return &c, nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter, offset, limit int) (*store.TaskPage, error) {
	matches := m.findBy(func(t *domain.Task) bool {
		if filter.UserID != uuid.Nil && t.UserID != filter.UserID {
			return false
		}
		if filter.Status != "" && t.Status != filter.Status {
			return false
		}
		if !filter.DueDate.IsZero() && !t.DueDate.Equal(domain.Midnight(filter.DueDate)) {
			return false
		}
		return true
	})

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Status != matches[j].Status {
			return matches[i].Status < matches[j].Status
		}
		return matches[i].DueDate.Before(matches[j].DueDate)
	})

	total := int64(len(matches))
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if limit <= 0 || end > len(matches) {
		end = len(matches)
	}

	return &store.TaskPage{Tasks: matches[offset:end], Total: total}, nil
}

// Save implements the TaskStore interface
func (m *MockTaskStore) Save(ctx context.Context, task *domain.Task) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if stored.Version != task.Version {
		return store.ErrVersionConflict
	}

	task.Version++
	task.UpdatedAt = time.Now().UTC()
	c := *task
	m.tasks[task.ID] = &c
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID, version int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, version)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	if stored.Version != version {
		return store.ErrVersionConflict
	}
	delete(m.tasks, id)
	return nil
}

// FindOverdue implements the TaskStore interface
func (m *MockTaskStore) FindOverdue(ctx context.Context, today time.Time) ([]*domain.Task, error) {
	midnight := domain.Midnight(today)
	return m.findBy(func(t *domain.Task) bool {
		return t.Status == domain.TaskStatusInProgress && t.DueDate.Before(midnight)
	}), nil
}

// FindByStatusUpdatedBefore implements the TaskStore interface
func (m *MockTaskStore) FindByStatusUpdatedBefore(ctx context.Context, status domain.TaskStatus, cutoff time.Time) ([]*domain.Task, error) {
	return m.findBy(func(t *domain.Task) bool {
		return t.Status == status && t.UpdatedAt.Before(cutoff)
	}), nil
}

// WithTx implements the TaskStore interface. The mock has no transactions;
// it returns itself.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

func (m *MockTaskStore) findBy(pred func(*domain.Task) bool) []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Task
	for _, t := range m.tasks {
		if pred(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}
