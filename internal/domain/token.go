package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common verification token validation errors
var (
	ErrEmptyTokenID     = errors.New("token ID cannot be empty")
	ErrEmptyTokenValue  = errors.New("token value cannot be empty")
	ErrEmptyTokenOwner  = errors.New("token owner cannot be empty")
	ErrEmptyTokenExpiry = errors.New("token expiry cannot be empty")
)

// TokenType identifies the flow a verification token belongs to. A token
// presented to the wrong flow is invalid regardless of its other state.
type TokenType string

// Token types.
const (
	TokenTypeEmailVerification TokenType = "EMAIL_VERIFICATION"
	TokenTypePasswordReset     TokenType = "PASSWORD_RESET"
)

// VerificationToken is a single-use, typed, expiring token bound to a user.
//
// At most one active token (unused, unrevoked, unexpired) may exist per
// (user, type); the store enforces this with a partial unique index on
// unrevoked rows. Used is permanent: once consumed a token is never reset.
type VerificationToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"` // Opaque token string, only ever sent by email
	Type      TokenType `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	Revoked   bool      `json:"revoked"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NewVerificationToken creates a fresh token of the given type for a user,
// expiring after ttl. The token string is an opaque random UUID.
func NewVerificationToken(userID uuid.UUID, tokenType TokenType, ttl time.Duration) (*VerificationToken, error) {
	token := &VerificationToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		Type:      tokenType,
		ExpiresAt: time.Now().UTC().Add(ttl),
		CreatedAt: time.Now().UTC(),
	}

	if err := token.Validate(); err != nil {
		return nil, err
	}

	return token, nil
}

// Validate checks if the VerificationToken has valid data.
func (t *VerificationToken) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTokenID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTokenOwner
	}
	if t.Token == "" {
		return ErrEmptyTokenValue
	}
	if t.ExpiresAt.IsZero() {
		return ErrEmptyTokenExpiry
	}
	return nil
}

// IsExpired reports whether the token's validity window has passed.
func (t *VerificationToken) IsExpired() bool {
	return t.ExpiresAt.Before(time.Now())
}

// IsActive reports whether the token can still be consumed:
// not used, not revoked, not expired.
func (t *VerificationToken) IsActive() bool {
	return !t.Used && !t.Revoked && !t.IsExpired()
}

// MarkConsumed flags the token as used and revoked in one step. Consumption
// is irreversible; the store persists both flags in a single commit.
func (t *VerificationToken) MarkConsumed() {
	t.Used = true
	t.Revoked = true
}
