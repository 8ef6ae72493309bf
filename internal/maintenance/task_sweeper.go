// Package maintenance contains the background sweeps that keep task and
// account state consistent over time, and the scheduler that runs them.
//
// Every sweep follows the same shape: list candidate rows by predicate, then
// process each row in its own transaction with a version-checked write. A row
// that changed since it was listed is skipped with a warning; one bad row
// never blocks the rest of the sweep.
package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vicentejluz/taskmanager/internal/config"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// TaskSweeper runs the task-side maintenance sweeps: marking overdue tasks
// pending and purging terminal tasks past their retention window.
type TaskSweeper struct {
	taskStore store.TaskStore
	txRunner  store.TxRunner
	retention config.RetentionConfig
	logger    *slog.Logger
}

// NewTaskSweeper creates a TaskSweeper.
func NewTaskSweeper(taskStore store.TaskStore, txRunner store.TxRunner, retention config.RetentionConfig, logger *slog.Logger) *TaskSweeper {
	return &TaskSweeper{
		taskStore: taskStore,
		txRunner:  txRunner,
		retention: retention,
		logger:    logger.With("component", "task_sweeper"),
	}
}

// SweepOverdue moves IN_PROGRESS tasks whose due date has passed to PENDING.
// The predicate is re-derived from live state on every run, so a task edited
// back to a future due date simply stops matching. Returns the number of
// rows swept and the number skipped due to concurrent writes.
func (s *TaskSweeper) SweepOverdue(ctx context.Context) (swept, skipped int, err error) {
	today := domain.Midnight(time.Now())

	tasks, err := s.taskStore.FindOverdue(ctx, today)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list overdue tasks: %w", err)
	}

	for _, task := range tasks {
		txErr := s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			tasks := s.taskStore.WithTx(tx)

			current, err := tasks.GetByID(ctx, task.ID)
			if err != nil {
				return err
			}
			if !current.IsOverdue(today) {
				// Changed underneath us; nothing to do.
				return nil
			}

			current.Status = domain.TaskStatusPending
			return tasks.Save(ctx, current)
		})
		if txErr != nil {
			if isRowSkippable(txErr) {
				skipped++
				s.logger.Warn("skipping overdue task, row changed concurrently",
					"task_id", task.ID,
					"error", txErr)
				continue
			}
			return swept, skipped, fmt.Errorf("overdue sweep failed on task %s: %w", task.ID, txErr)
		}
		swept++
	}

	s.logger.Info("overdue task sweep finished",
		"swept", swept,
		"skipped", skipped)
	return swept, skipped, nil
}

// SweepCancelled permanently deletes CANCELLED tasks untouched for longer
// than the cancelled-task retention window.
func (s *TaskSweeper) SweepCancelled(ctx context.Context) (int, int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention.CancelledTaskDays)
	return s.purgeByStatus(ctx, domain.TaskStatusCancelled, cutoff)
}

// SweepDone permanently deletes DONE tasks untouched for longer than the
// done-task retention window.
func (s *TaskSweeper) SweepDone(ctx context.Context) (int, int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention.DoneTaskDays)
	return s.purgeByStatus(ctx, domain.TaskStatusDone, cutoff)
}

func (s *TaskSweeper) purgeByStatus(ctx context.Context, status domain.TaskStatus, cutoff time.Time) (swept, skipped int, err error) {
	tasks, err := s.taskStore.FindByStatusUpdatedBefore(ctx, status, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list %s tasks for purge: %w", status, err)
	}

	for _, task := range tasks {
		txErr := s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return s.taskStore.WithTx(tx).Delete(ctx, task.ID, task.Version)
		})
		if txErr != nil {
			if isRowSkippable(txErr) {
				skipped++
				s.logger.Warn("skipping task purge, row changed concurrently",
					"task_id", task.ID,
					"status", status,
					"error", txErr)
				continue
			}
			return swept, skipped, fmt.Errorf("%s purge failed on task %s: %w", status, task.ID, txErr)
		}
		swept++
	}

	s.logger.Info("task purge finished",
		"status", status,
		"swept", swept,
		"skipped", skipped)
	return swept, skipped, nil
}

// isRowSkippable reports whether a per-row failure should be skipped rather
// than abort the sweep: the row was modified or removed by a concurrent
// writer between listing and processing.
func isRowSkippable(err error) bool {
	return errors.Is(err, store.ErrVersionConflict) || store.IsNotFoundError(err)
}
