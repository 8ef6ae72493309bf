package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	SaveFn       func(ctx context.Context, user *domain.User) error
	DeleteFn     func(ctx context.Context, id uuid.UUID, version int64) error

	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

// Ensure MockUserStore implements store.UserStore
var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users: make(map[uuid.UUID]*domain.User),
	}
}

// Seed inserts a user directly, bypassing validation. Returns the stored copy.
func (m *MockUserStore) Seed(user *domain.User) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = copyUser(user)
	return user
}

// Count returns the number of stored users.
func (m *MockUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	user.Version = 0
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(user), nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	normalized := domain.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == normalized {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// ExistsByEmail implements the UserStore interface
func (m *MockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	normalized := domain.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == normalized {
			return true, nil
		}
	}
	return false, nil
}

// Save implements the UserStore interface
func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if stored.Version != user.Version {
		return store.ErrVersionConflict
	}
	for _, u := range m.users {
		if u.ID != user.ID && u.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	user.Version++
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = copyUser(user)
	return nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID, version int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, version)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	if stored.Version != version {
		return store.ErrVersionConflict
	}
	delete(m.users, id)
	return nil
}

// FindDisabledUpdatedBefore implements the UserStore interface
func (m *MockUserStore) FindDisabledUpdatedBefore(ctx context.Context, cutoff time.Time) ([]*domain.User, error) {
	return m.findBy(func(u *domain.User) bool {
		return u.AccountStatus == domain.AccountStatusDisabledByAdmin && u.UpdatedAt.Before(cutoff)
	}), nil
}

// FindDeletedBefore implements the UserStore interface
func (m *MockUserStore) FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.User, error) {
	return m.findBy(func(u *domain.User) bool {
		return u.DeletedAt != nil && u.DeletedAt.Before(cutoff)
	}), nil
}

// FindLockExpiredBefore implements the UserStore interface
func (m *MockUserStore) FindLockExpiredBefore(ctx context.Context, now time.Time) ([]*domain.User, error) {
	return m.findBy(func(u *domain.User) bool {
		return u.LockUntil != nil && u.LockUntil.Before(now)
	}), nil
}

// WithTx implements the UserStore interface. The mock has no transactions;
// it returns itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

func (m *MockUserStore) findBy(pred func(*domain.User) bool) []*domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.User
	for _, u := range m.users {
		if pred(u) {
			out = append(out, copyUser(u))
		}
	}
	return out
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]domain.UserRole(nil), u.Roles...)
	if u.LockUntil != nil {
		t := *u.LockUntil
		c.LockUntil = &t
	}
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
