package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vicentejluz/taskmanager/internal/config"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// UserSweeper runs the account-side maintenance sweeps: purging long-disabled
// and long-deleted accounts, and clearing expired login locks.
type UserSweeper struct {
	userStore store.UserStore
	txRunner  store.TxRunner
	retention config.RetentionConfig
	logger    *slog.Logger
}

// NewUserSweeper creates a UserSweeper.
func NewUserSweeper(userStore store.UserStore, txRunner store.TxRunner, retention config.RetentionConfig, logger *slog.Logger) *UserSweeper {
	return &UserSweeper{
		userStore: userStore,
		txRunner:  txRunner,
		retention: retention,
		logger:    logger.With("component", "user_sweeper"),
	}
}

// SweepDisabled permanently deletes accounts disabled by an administrator
// and untouched for longer than the disabled-account retention window. Tasks
// and tokens go with them via the schema's cascading deletes.
func (s *UserSweeper) SweepDisabled(ctx context.Context) (swept, skipped int, err error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention.DisabledUserDays)

	users, err := s.userStore.FindDisabledUpdatedBefore(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list disabled accounts for purge: %w", err)
	}

	return s.purge(ctx, users, "disabled account purge")
}

// SweepDeleted permanently deletes soft-deleted accounts whose deletion
// timestamp is older than the deleted-account retention window.
func (s *UserSweeper) SweepDeleted(ctx context.Context) (swept, skipped int, err error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention.DeletedUserDays)

	users, err := s.userStore.FindDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list deleted accounts for purge: %w", err)
	}

	return s.purge(ctx, users, "deleted account purge")
}

// SweepExpiredLocks clears the lock axis of accounts whose lock has run out,
// so the stored state converges with what the login path would compute
// anyway.
func (s *UserSweeper) SweepExpiredLocks(ctx context.Context) (swept, skipped int, err error) {
	now := time.Now().UTC()

	users, err := s.userStore.FindLockExpiredBefore(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list expired locks: %w", err)
	}

	for _, user := range users {
		txErr := s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			users := s.userStore.WithTx(tx)

			current, err := users.GetByID(ctx, user.ID)
			if err != nil {
				return err
			}
			if !current.IsLockExpired() {
				return nil
			}

			current.Unlock()
			return users.Save(ctx, current)
		})
		if txErr != nil {
			if isRowSkippable(txErr) {
				skipped++
				s.logger.Warn("skipping lock clear, row changed concurrently",
					"user_id", user.ID,
					"error", txErr)
				continue
			}
			return swept, skipped, fmt.Errorf("lock sweep failed on user %s: %w", user.ID, txErr)
		}
		swept++
	}

	s.logger.Info("expired lock sweep finished",
		"swept", swept,
		"skipped", skipped)
	return swept, skipped, nil
}

func (s *UserSweeper) purge(ctx context.Context, users []*domain.User, what string) (swept, skipped int, err error) {
	for _, user := range users {
		// Admin accounts never reach these predicates through normal flows,
		// but a sweep must not be the thing that removes one.
		if user.IsAdmin() {
			s.logger.Warn("refusing to purge admin account",
				"user_id", user.ID)
			skipped++
			continue
		}

		txErr := s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return s.userStore.WithTx(tx).Delete(ctx, user.ID, user.Version)
		})
		if txErr != nil {
			if isRowSkippable(txErr) {
				skipped++
				s.logger.Warn("skipping account purge, row changed concurrently",
					"user_id", user.ID,
					"error", txErr)
				continue
			}
			return swept, skipped, fmt.Errorf("%s failed on user %s: %w", what, user.ID, txErr)
		}
		swept++
	}

	s.logger.Info(what+" finished",
		"swept", swept,
		"skipped", skipped)
	return swept, skipped, nil
}
