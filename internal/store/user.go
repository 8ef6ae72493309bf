package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
)

// UserStore defines the interface for user data persistence.
//
// Save and Delete are version-checked: they compare the version the caller
// read against the stored row and return ErrVersionConflict on a stale
// version. On success Save increments the in-memory Version and refreshes
// UpdatedAt so the caller holds the persisted state.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail reports whether a user with the normalized email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save persists all mutable fields of an existing user.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists when changing to an email that already exists.
	// Returns ErrVersionConflict if the row changed since it was read.
	Save(ctx context.Context, user *domain.User) error

	// Delete permanently removes a user, verifying the given version.
	// Returns ErrUserNotFound or ErrVersionConflict accordingly.
	Delete(ctx context.Context, id uuid.UUID, version int64) error

	// FindDisabledUpdatedBefore lists DISABLED_BY_ADMIN accounts whose last
	// update is older than the cutoff. Used by the retention sweep.
	FindDisabledUpdatedBefore(ctx context.Context, cutoff time.Time) ([]*domain.User, error)

	// FindDeletedBefore lists soft-deleted accounts whose deletion timestamp
	// is older than the cutoff. Used by the retention sweep.
	FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.User, error)

	// FindLockExpiredBefore lists accounts whose lock expiry has passed.
	// Used by the unlock sweep.
	FindLockExpiredBefore(ctx context.Context, now time.Time) ([]*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) UserStore
}
