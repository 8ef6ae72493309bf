package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := NewVerificationToken(userID, TokenTypeEmailVerification, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, userID, token.UserID)
	assert.Equal(t, TokenTypeEmailVerification, token.Type)
	assert.NotEmpty(t, token.Token)
	assert.False(t, token.Used)
	assert.False(t, token.Revoked)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)
}

func TestTokenActivity(t *testing.T) {
	t.Parallel()

	fresh := func(t *testing.T) *VerificationToken {
		t.Helper()
		token, err := NewVerificationToken(uuid.New(), TokenTypePasswordReset, 10*time.Minute)
		require.NoError(t, err)
		return token
	}

	t.Run("fresh token is active", func(t *testing.T) {
		t.Parallel()
		assert.True(t, fresh(t).IsActive())
	})

	t.Run("expired token is inactive", func(t *testing.T) {
		t.Parallel()
		token := fresh(t)
		token.ExpiresAt = time.Now().Add(-time.Second)
		assert.True(t, token.IsExpired())
		assert.False(t, token.IsActive())
	})

	t.Run("used token is inactive", func(t *testing.T) {
		t.Parallel()
		token := fresh(t)
		token.Used = true
		assert.False(t, token.IsActive())
	})

	t.Run("revoked token is inactive", func(t *testing.T) {
		t.Parallel()
		token := fresh(t)
		token.Revoked = true
		assert.False(t, token.IsActive())
	})
}

func TestMarkConsumed(t *testing.T) {
	t.Parallel()

	token, err := NewVerificationToken(uuid.New(), TokenTypeEmailVerification, time.Hour)
	require.NoError(t, err)

	token.MarkConsumed()
	assert.True(t, token.Used)
	assert.True(t, token.Revoked)
	assert.False(t, token.IsActive())
}
