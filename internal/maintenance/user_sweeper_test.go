package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/mocks"
	"github.com/vicentejluz/taskmanager/internal/store"
)

func newUserSweeper(userStore *mocks.MockUserStore) *UserSweeper {
	return NewUserSweeper(userStore, mocks.NewMockTxRunner(), testRetention(), testLogger())
}

func seedUserAged(t *testing.T, userStore *mocks.MockUserStore, email string, mutate func(*domain.User)) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Sweep Target", email, "password123")
	require.NoError(t, err)
	user.AccountStatus = domain.AccountStatusActive
	user.UpdatedAt = time.Now().UTC()
	if mutate != nil {
		mutate(user)
	}
	userStore.Seed(user)
	return user
}

func TestSweepDisabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("purges long-disabled accounts only", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		sweeper := newUserSweeper(userStore)

		old := seedUserAged(t, userStore, "old@example.com", func(u *domain.User) {
			u.AccountStatus = domain.AccountStatusDisabledByAdmin
			u.UpdatedAt = now.AddDate(0, 0, -91)
		})
		recent := seedUserAged(t, userStore, "recent@example.com", func(u *domain.User) {
			u.AccountStatus = domain.AccountStatusDisabledByAdmin
			u.UpdatedAt = now.AddDate(0, 0, -89)
		})
		active := seedUserAged(t, userStore, "active@example.com", func(u *domain.User) {
			u.UpdatedAt = now.AddDate(0, 0, -200)
		})

		swept, skipped, err := sweeper.SweepDisabled(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Zero(t, skipped)

		_, err = userStore.GetByID(ctx, old.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		_, err = userStore.GetByID(ctx, recent.ID)
		assert.NoError(t, err)
		_, err = userStore.GetByID(ctx, active.ID)
		assert.NoError(t, err)
	})

	t.Run("refuses to purge an admin account", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		sweeper := newUserSweeper(userStore)

		admin := seedUserAged(t, userStore, "admin@example.com", func(u *domain.User) {
			u.Roles = []domain.UserRole{domain.RoleUser, domain.RoleAdmin}
			u.AccountStatus = domain.AccountStatusDisabledByAdmin
			u.UpdatedAt = now.AddDate(0, 0, -200)
		})

		swept, skipped, err := sweeper.SweepDisabled(ctx)
		require.NoError(t, err)
		assert.Zero(t, swept)
		assert.Equal(t, 1, skipped)

		_, err = userStore.GetByID(ctx, admin.ID)
		assert.NoError(t, err)
	})
}

func TestSweepDeleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("purges accounts past the deletion retention window", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		sweeper := newUserSweeper(userStore)

		old := seedUserAged(t, userStore, "old@example.com", func(u *domain.User) {
			deleted := now.AddDate(0, 0, -31)
			u.DeletedAt = &deleted
		})
		recent := seedUserAged(t, userStore, "recent@example.com", func(u *domain.User) {
			deleted := now.AddDate(0, 0, -29)
			u.DeletedAt = &deleted
		})

		swept, _, err := sweeper.SweepDeleted(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)

		_, err = userStore.GetByID(ctx, old.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		_, err = userStore.GetByID(ctx, recent.ID)
		assert.NoError(t, err)
	})

	t.Run("a concurrently re-registered account is skipped", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		sweeper := newUserSweeper(userStore)

		seedUserAged(t, userStore, "old@example.com", func(u *domain.User) {
			deleted := now.AddDate(0, 0, -31)
			u.DeletedAt = &deleted
		})

		userStore.DeleteFn = func(ctx context.Context, id uuid.UUID, version int64) error {
			return store.ErrVersionConflict
		}

		swept, skipped, err := sweeper.SweepDeleted(ctx)
		require.NoError(t, err)
		assert.Zero(t, swept)
		assert.Equal(t, 1, skipped)
	})
}

func TestSweepExpiredLocks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("clears expired locks and leaves live ones", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		sweeper := newUserSweeper(userStore)

		expired := seedUserAged(t, userStore, "expired@example.com", func(u *domain.User) {
			until := now.Add(-time.Minute)
			u.LockUntil = &until
			u.FailedAttempts = 5
		})
		live := seedUserAged(t, userStore, "live@example.com", func(u *domain.User) {
			until := now.Add(10 * time.Minute)
			u.LockUntil = &until
			u.FailedAttempts = 5
		})

		swept, skipped, err := sweeper.SweepExpiredLocks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Zero(t, skipped)

		cleared, err := userStore.GetByID(ctx, expired.ID)
		require.NoError(t, err)
		assert.Nil(t, cleared.LockUntil)
		assert.Zero(t, cleared.FailedAttempts)

		still, err := userStore.GetByID(ctx, live.ID)
		require.NoError(t, err)
		require.NotNil(t, still.LockUntil)
		assert.Equal(t, 5, still.FailedAttempts)
	})

	t.Run("second run finds nothing", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		sweeper := newUserSweeper(userStore)

		seedUserAged(t, userStore, "expired@example.com", func(u *domain.User) {
			until := now.Add(-time.Minute)
			u.LockUntil = &until
			u.FailedAttempts = 5
		})

		swept, _, err := sweeper.SweepExpiredLocks(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, swept)

		swept, _, err = sweeper.SweepExpiredLocks(ctx)
		require.NoError(t, err)
		assert.Zero(t, swept)
	})
}
