package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicentejluz/taskmanager/internal/config"
)

const testSigningKey = "test-secret-key-thats-long-enough-for-hs256"

func newTestJWTService(lifetime time.Duration, timeFunc func() time.Time) *hmacJWTService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &hmacJWTService{
		signingKey:    []byte(testSigningKey),
		tokenLifetime: lifetime,
		timeFunc:      timeFunc,
		clockSkew:     2 * time.Minute,
	}
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("rejects a short secret", func(t *testing.T) {
		t.Parallel()
		_, err := NewJWTService(config.AuthConfig{JWTSecret: "too-short", TokenLifetimeMinutes: 60})
		assert.Error(t, err)
	})

	t.Run("accepts a 32+ character secret", func(t *testing.T) {
		t.Parallel()
		svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSigningKey, TokenLifetimeMinutes: 60})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip carries the user ID", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(time.Hour, nil)
		userID := uuid.New()

		token, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("tokens carry unique IDs", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(time.Hour, nil)
		userID := uuid.New()

		first, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)
		second, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestValidateTokenFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(time.Hour, nil)
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token signed with a different key", func(t *testing.T) {
		t.Parallel()
		issuer := newTestJWTService(time.Hour, nil)
		issuer.signingKey = []byte("a-completely-different-32-char-key!!")

		token, err := issuer.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		verifier := newTestJWTService(time.Hour, nil)
		_, err = verifier.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		t.Parallel()
		issuedAt := time.Now().Add(-time.Hour)
		issuer := newTestJWTService(10*time.Minute, func() time.Time { return issuedAt })

		token, err := issuer.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		verifier := newTestJWTService(10*time.Minute, nil)
		_, err = verifier.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("tolerates expiry within the clock skew", func(t *testing.T) {
		t.Parallel()
		issuedAt := time.Now().Add(-11 * time.Minute)
		issuer := newTestJWTService(10*time.Minute, func() time.Time { return issuedAt })

		token, err := issuer.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		// Expired one minute ago, well inside the two minute leeway.
		verifier := newTestJWTService(10*time.Minute, nil)
		_, err = verifier.ValidateToken(ctx, token)
		assert.NoError(t, err)
	})
}

func TestBcryptPasswords(t *testing.T) {
	t.Parallel()

	// Minimum bcrypt cost keeps the hashing round fast.
	hasher := NewBcryptHasher(4)
	verifier := NewBcryptVerifier()

	hash, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, verifier.Compare(hash, "correct horse battery"))
	assert.Error(t, verifier.Compare(hash, "wrong password"))
}
