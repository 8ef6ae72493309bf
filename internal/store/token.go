package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
)

// TokenStore defines the interface for verification token persistence.
//
// The backing schema enforces at most one unrevoked token per (user, type)
// with a partial unique index; Create surfaces that constraint as
// ErrActiveTokenExists so callers can resolve the race by fetching the
// winner's token.
type TokenStore interface {
	// Create saves a new verification token.
	// Returns ErrActiveTokenExists if an unrevoked token of the same type
	// already exists for the user.
	Create(ctx context.Context, token *domain.VerificationToken) error

	// GetByToken retrieves a token by its opaque token string.
	// Returns ErrTokenNotFound if no such token exists.
	GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error)

	// FindActiveByUserAndType retrieves the single unrevoked token of the
	// given type for a user, whatever its used/expired state.
	// Returns ErrTokenNotFound if none exists.
	FindActiveByUserAndType(ctx context.Context, userID uuid.UUID, tokenType domain.TokenType) (*domain.VerificationToken, error)

	// Save persists the mutable flags (used, revoked) of an existing token.
	// Returns ErrTokenNotFound or ErrVersionConflict accordingly.
	Save(ctx context.Context, token *domain.VerificationToken) error

	// WithTx returns a new TokenStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TokenStore
}
