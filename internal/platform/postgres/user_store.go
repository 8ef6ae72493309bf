package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db store.DBTX
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresUserStore{db: db}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

const userColumns = `id, name, email, hashed_password, roles, account_status,
	failed_attempts, lock_until, deleted_at, version, created_at, updated_at`

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO users (id, name, email, hashed_password, roles, account_status,
			failed_attempts, lock_until, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING version, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.HashedPassword,
		rolesToString(user.Roles),
		user.AccountStatus,
		user.FailedAttempts,
		user.LockUntil,
		user.DeletedAt,
	).Scan(&user.Version, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return store.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
}

// ExistsByEmail implements store.UserStore.ExistsByEmail
func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		domain.NormalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// Save implements store.UserStore.Save. The UPDATE predicate carries the
// version the caller read; zero matched rows with an existing id means a
// concurrent writer got there first.
func (s *PostgresUserStore) Save(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, hashed_password = $3, roles = $4,
			account_status = $5, failed_attempts = $6, lock_until = $7,
			deleted_at = $8, version = version + 1, updated_at = now()
		WHERE id = $9 AND version = $10
		RETURNING version, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.HashedPassword,
		rolesToString(user.Roles),
		user.AccountStatus,
		user.FailedAttempts,
		user.LockUntil,
		user.DeletedAt,
		user.ID,
		user.Version,
	).Scan(&user.Version, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.conflictOrNotFound(ctx, user.ID, store.ErrUserNotFound)
		}
		if isUniqueViolation(err, "users_email_key") {
			return store.ErrEmailExists
		}
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID, version int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return s.conflictOrNotFound(ctx, id, store.ErrUserNotFound)
	}

	return nil
}

// FindDisabledUpdatedBefore implements store.UserStore.FindDisabledUpdatedBefore
func (s *PostgresUserStore) FindDisabledUpdatedBefore(ctx context.Context, cutoff time.Time) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE account_status = $1 AND updated_at < $2
		ORDER BY updated_at ASC`
	return s.queryUsers(ctx, query, domain.AccountStatusDisabledByAdmin, cutoff)
}

// FindDeletedBefore implements store.UserStore.FindDeletedBefore
func (s *PostgresUserStore) FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NOT NULL AND deleted_at < $1
		ORDER BY deleted_at ASC`
	return s.queryUsers(ctx, query, cutoff)
}

// FindLockExpiredBefore implements store.UserStore.FindLockExpiredBefore
func (s *PostgresUserStore) FindLockExpiredBefore(ctx context.Context, now time.Time) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE lock_until IS NOT NULL AND lock_until < $1
		ORDER BY lock_until ASC`
	return s.queryUsers(ctx, query, now)
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx}
}

// conflictOrNotFound disambiguates a zero-row version-checked write: if the
// row still exists the version was stale, otherwise the entity is gone.
func (s *PostgresUserStore) conflictOrNotFound(ctx context.Context, id uuid.UUID, notFound error) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return store.ErrVersionConflict
	}
	return notFound
}

func (s *PostgresUserStore) queryUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (*domain.User, error) {
	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUserRow(row rowScanner) (*domain.User, error) {
	var user domain.User
	var roles string
	var lockUntil, deletedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&roles,
		&user.AccountStatus,
		&user.FailedAttempts,
		&lockUntil,
		&deletedAt,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}

	user.Roles = rolesFromString(roles)
	if lockUntil.Valid {
		user.LockUntil = &lockUntil.Time
	}
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}

	return &user, nil
}

// Roles are stored as a comma-joined string; the set is tiny and only ever
// matched by exact role name.
func rolesToString(roles []domain.UserRole) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func rolesFromString(s string) []domain.UserRole {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	roles := make([]domain.UserRole, len(parts))
	for i, p := range parts {
		roles[i] = domain.UserRole(p)
	}
	return roles
}
