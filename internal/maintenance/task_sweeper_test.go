package maintenance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicentejluz/taskmanager/internal/config"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/mocks"
	"github.com/vicentejluz/taskmanager/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRetention() config.RetentionConfig {
	return config.RetentionConfig{
		CancelledTaskDays: 90,
		DoneTaskDays:      90,
		DisabledUserDays:  90,
		DeletedUserDays:   30,
	}
}

func newTaskSweeper(taskStore *mocks.MockTaskStore) *TaskSweeper {
	return NewTaskSweeper(taskStore, mocks.NewMockTxRunner(), testRetention(), testLogger())
}

func seedTaskAged(t *testing.T, taskStore *mocks.MockTaskStore, status domain.TaskStatus, dueDate time.Time, updatedAt time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(uuid.New(), "seeded task", "", dueDate)
	require.NoError(t, err)
	task.Status = status
	task.UpdatedAt = updatedAt
	taskStore.Seed(task)
	return task
}

func TestSweepOverdue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now()

	t.Run("parks overdue in-progress tasks pending", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		sweeper := newTaskSweeper(taskStore)

		overdue := seedTaskAged(t, taskStore, domain.TaskStatusInProgress, now.AddDate(0, 0, -2), now)
		dueToday := seedTaskAged(t, taskStore, domain.TaskStatusInProgress, now, now)
		alreadyPending := seedTaskAged(t, taskStore, domain.TaskStatusPending, now.AddDate(0, 0, -2), now)

		swept, skipped, err := sweeper.SweepOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Zero(t, skipped)

		stored, err := taskStore.GetByID(ctx, overdue.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, stored.Status)
		assert.Equal(t, int64(1), stored.Version)

		for _, untouched := range []*domain.Task{dueToday, alreadyPending} {
			stored, err := taskStore.GetByID(ctx, untouched.ID)
			require.NoError(t, err)
			assert.Equal(t, untouched.Status, stored.Status)
			assert.Zero(t, stored.Version)
		}
	})

	t.Run("second run finds nothing", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		sweeper := newTaskSweeper(taskStore)
		seedTaskAged(t, taskStore, domain.TaskStatusInProgress, now.AddDate(0, 0, -2), now)

		swept, _, err := sweeper.SweepOverdue(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, swept)

		swept, _, err = sweeper.SweepOverdue(ctx)
		require.NoError(t, err)
		assert.Zero(t, swept)
	})

	t.Run("concurrent writes are skipped, not fatal", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		sweeper := newTaskSweeper(taskStore)
		seedTaskAged(t, taskStore, domain.TaskStatusInProgress, now.AddDate(0, 0, -2), now)
		seedTaskAged(t, taskStore, domain.TaskStatusInProgress, now.AddDate(0, 0, -3), now)

		conflicted := false
		taskStore.SaveFn = func(ctx context.Context, task *domain.Task) error {
			if !conflicted {
				conflicted = true
				return store.ErrVersionConflict
			}
			taskStore.SaveFn = nil
			return taskStore.Save(ctx, task)
		}

		swept, skipped, err := sweeper.SweepOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Equal(t, 1, skipped)
	})
}

func TestSweepTerminalPurges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("purges cancelled tasks past retention only", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		sweeper := newTaskSweeper(taskStore)

		old := seedTaskAged(t, taskStore, domain.TaskStatusCancelled, now, now.AddDate(0, 0, -91))
		recent := seedTaskAged(t, taskStore, domain.TaskStatusCancelled, now, now.AddDate(0, 0, -89))

		swept, skipped, err := sweeper.SweepCancelled(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Zero(t, skipped)

		_, err = taskStore.GetByID(ctx, old.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		_, err = taskStore.GetByID(ctx, recent.ID)
		assert.NoError(t, err)
	})

	t.Run("purges done tasks past retention only", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		sweeper := newTaskSweeper(taskStore)

		seedTaskAged(t, taskStore, domain.TaskStatusDone, now, now.AddDate(0, 0, -91))
		seedTaskAged(t, taskStore, domain.TaskStatusDone, now, now.AddDate(0, 0, -89))
		// Live tasks are never purge candidates regardless of age.
		seedTaskAged(t, taskStore, domain.TaskStatusInProgress, now, now.AddDate(0, 0, -200))

		swept, _, err := sweeper.SweepDone(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Equal(t, 2, taskStore.Count())
	})

	t.Run("a row deleted concurrently is skipped", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		sweeper := newTaskSweeper(taskStore)
		seedTaskAged(t, taskStore, domain.TaskStatusDone, now, now.AddDate(0, 0, -100))

		taskStore.DeleteFn = func(ctx context.Context, id uuid.UUID, version int64) error {
			return store.ErrTaskNotFound
		}

		swept, skipped, err := sweeper.SweepDone(ctx)
		require.NoError(t, err)
		assert.Zero(t, swept)
		assert.Equal(t, 1, skipped)
	})
}
