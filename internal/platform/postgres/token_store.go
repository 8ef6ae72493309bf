package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// PostgresTokenStore implements the store.TokenStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTokenStore struct {
	db store.DBTX
}

// NewPostgresTokenStore creates a new PostgreSQL implementation of the
// TokenStore interface.
func NewPostgresTokenStore(db store.DBTX) *PostgresTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresTokenStore{db: db}
}

// Ensure PostgresTokenStore implements store.TokenStore interface
var _ store.TokenStore = (*PostgresTokenStore)(nil)

const tokenColumns = `id, user_id, token, token_type, expires_at, used,
	revoked, version, created_at`

// Create implements store.TokenStore.Create. The partial unique index on
// unrevoked (user_id, token_type) pairs turns a concurrent duplicate insert
// into ErrActiveTokenExists.
func (s *PostgresTokenStore) Create(ctx context.Context, token *domain.VerificationToken) error {
	if err := token.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO verification_tokens (id, user_id, token, token_type,
			expires_at, used, revoked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING version, created_at`

	err := s.db.QueryRowContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.Type,
		token.ExpiresAt,
		token.Used,
		token.Revoked,
	).Scan(&token.Version, &token.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "verification_tokens_active_uniq") {
			return store.ErrActiveTokenExists
		}
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	return nil
}

// GetByToken implements store.TokenStore.GetByToken
func (s *PostgresTokenStore) GetByToken(ctx context.Context, tokenValue string) (*domain.VerificationToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM verification_tokens WHERE token = $1`
	return s.scanToken(s.db.QueryRowContext(ctx, query, tokenValue))
}

// FindActiveByUserAndType implements store.TokenStore.FindActiveByUserAndType
func (s *PostgresTokenStore) FindActiveByUserAndType(ctx context.Context, userID uuid.UUID, tokenType domain.TokenType) (*domain.VerificationToken, error) {
	query := `SELECT ` + tokenColumns + `
		FROM verification_tokens
		WHERE user_id = $1 AND token_type = $2 AND NOT revoked`
	return s.scanToken(s.db.QueryRowContext(ctx, query, userID, tokenType))
}

// Save implements store.TokenStore.Save
func (s *PostgresTokenStore) Save(ctx context.Context, token *domain.VerificationToken) error {
	query := `
		UPDATE verification_tokens
		SET used = $1, revoked = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version`

	err := s.db.QueryRowContext(ctx, query,
		token.Used,
		token.Revoked,
		token.ID,
		token.Version,
	).Scan(&token.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.conflictOrNotFound(ctx, token.ID)
		}
		return fmt.Errorf("failed to save verification token: %w", err)
	}

	return nil
}

// WithTx implements store.TokenStore.WithTx
func (s *PostgresTokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return &PostgresTokenStore{db: tx}
}

func (s *PostgresTokenStore) conflictOrNotFound(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM verification_tokens WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check token existence: %w", err)
	}
	if exists {
		return store.ErrVersionConflict
	}
	return store.ErrTokenNotFound
}

func (s *PostgresTokenStore) scanToken(row *sql.Row) (*domain.VerificationToken, error) {
	var token domain.VerificationToken

	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.Type,
		&token.ExpiresAt,
		&token.Used,
		&token.Revoked,
		&token.Version,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to scan token row: %w", err)
	}

	return &token, nil
}
