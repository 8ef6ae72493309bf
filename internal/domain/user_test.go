package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("starts pending with the USER role", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("Alice", "Alice@Example.com ", "password123")
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, AccountStatusPendingVerification, user.AccountStatus)
		assert.Equal(t, []UserRole{RoleUser}, user.Roles)
		assert.Zero(t, user.FailedAttempts)
		assert.Nil(t, user.LockUntil)
		assert.Nil(t, user.DeletedAt)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name     string
			userName string
			email    string
			password string
			wantErr  error
		}{
			{"empty name", "", "a@example.com", "password123", ErrEmptyName},
			{"name too long", string(make([]byte, 61)), "a@example.com", "password123", ErrNameTooLong},
			{"empty email", "Alice", "", "password123", ErrEmptyEmail},
			{"malformed email", "Alice", "not-an-email", "password123", ErrInvalidEmail},
			{"short password", "Alice", "a@example.com", "short", ErrPasswordTooShort},
			{"long password", "Alice", "a@example.com", string(make([]byte, 73)), ErrPasswordTooLong},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewUser(tc.userName, tc.email, tc.password)
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}
	})
}

func TestUserLockout(t *testing.T) {
	t.Parallel()

	t.Run("locks after max attempts", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("Bob", "bob@example.com", "password123")
		require.NoError(t, err)

		for i := 0; i < 4; i++ {
			user.RegisterFailedLoginAttempt(15*time.Minute, 5)
			assert.False(t, user.IsLocked(), "attempt %d should not lock", i+1)
		}

		user.RegisterFailedLoginAttempt(15*time.Minute, 5)
		assert.True(t, user.IsLocked())
		assert.Equal(t, 5, user.FailedAttempts)
		require.NotNil(t, user.LockUntil)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), *user.LockUntil, time.Minute)
	})

	t.Run("unlock clears both counter and expiry", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("Bob", "bob@example.com", "password123")
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			user.RegisterFailedLoginAttempt(15*time.Minute, 5)
		}
		require.True(t, user.IsLocked())

		user.Unlock()
		assert.False(t, user.IsLocked())
		assert.Zero(t, user.FailedAttempts)
		assert.Nil(t, user.LockUntil)
	})

	t.Run("expired lock is reported as expired, not locked", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("Bob", "bob@example.com", "password123")
		require.NoError(t, err)

		past := time.Now().Add(-time.Minute)
		user.LockUntil = &past

		assert.False(t, user.IsLocked())
		assert.True(t, user.IsLockExpired())
	})
}

func TestUserStatusAxes(t *testing.T) {
	t.Parallel()

	user, err := NewUser("Carol", "carol@example.com", "password123")
	require.NoError(t, err)

	// Pending accounts are not enabled.
	assert.False(t, user.IsEnabled())

	user.AccountStatus = AccountStatusActive
	assert.True(t, user.IsEnabled())

	// Soft deletion disables independently of status.
	now := time.Now()
	user.DeletedAt = &now
	assert.True(t, user.IsDeleted())
	assert.False(t, user.IsEnabled())

	user.DeletedAt = nil
	user.AccountStatus = AccountStatusDisabledByAdmin
	assert.False(t, user.IsEnabled())
}

func TestUserRoles(t *testing.T) {
	t.Parallel()

	user, err := NewUser("Dave", "dave@example.com", "password123")
	require.NoError(t, err)

	assert.True(t, user.HasRole(RoleUser))
	assert.False(t, user.IsAdmin())

	user.Roles = append(user.Roles, RoleAdmin)
	assert.True(t, user.IsAdmin())
}
