package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vicentejluz/taskmanager/internal/config"
)

// Scheduler triggers the maintenance sweeps once at startup and then on a
// fixed interval. Runs are single-flight: a trigger arriving while a run is
// in progress is dropped, never queued. The sweeps always execute in the
// same fixed order; an unexpected sweep failure ends that run early, the
// scheduler itself keeps running and the next trigger starts a fresh run.
type Scheduler struct {
	tasks    *TaskSweeper
	users    *UserSweeper
	interval time.Duration
	logger   *slog.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a Scheduler over the two sweepers.
func NewScheduler(tasks *TaskSweeper, users *UserSweeper, cfg config.MaintenanceConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		users:    users,
		interval: time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
		logger:   logger.With("component", "maintenance_scheduler"),
	}
}

// Start launches the scheduling loop: one immediate run, then one per
// interval until Stop is called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.RunOnce(ctx, "startup")

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx, "interval")
			}
		}
	}()

	s.logger.Info("maintenance scheduler started",
		"interval", s.interval)
}

// Stop cancels the scheduling loop and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("maintenance scheduler stopped")
}

// RunOnce executes one full maintenance run unless another run is already in
// flight, in which case the trigger is dropped. An unexpected step failure
// aborts the remainder of the run; the single-flight flag is released on
// every exit. Returns whether the run actually executed.
func (s *Scheduler) RunOnce(ctx context.Context, source string) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("maintenance run skipped - already running",
			"source", source)
		return false
	}
	defer s.running.Store(false)

	start := time.Now()
	s.logger.Info("maintenance run starting", "source", source)

	steps := []struct {
		name string
		fn   func(context.Context) (int, int, error)
	}{
		{"overdue_tasks", s.tasks.SweepOverdue},
		{"cancelled_task_purge", s.tasks.SweepCancelled},
		{"done_task_purge", s.tasks.SweepDone},
		{"disabled_account_purge", s.users.SweepDisabled},
		{"deleted_account_purge", s.users.SweepDeleted},
		{"expired_lock_clear", s.users.SweepExpiredLocks},
	}
	for _, st := range steps {
		if err := s.step(ctx, st.name, st.fn); err != nil {
			s.logger.Error("maintenance run aborted",
				"source", source,
				"step", st.name,
				"error", err)
			return true
		}
	}

	s.logger.Info("maintenance run finished",
		"source", source,
		"duration_ms", time.Since(start).Milliseconds())
	return true
}

// step runs one sweep, converting panics into errors so the caller can end
// the run while still releasing the single-flight flag.
func (s *Scheduler) step(ctx context.Context, name string, fn func(context.Context) (int, int, error)) (err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("maintenance step panicked",
				"step", name,
				"panic", p)
			err = fmt.Errorf("step %s panicked: %v", name, p)
		}
	}()

	swept, skipped, err := fn(ctx)
	if err != nil {
		s.logger.Error("maintenance step failed",
			"step", name,
			"swept", swept,
			"skipped", skipped,
			"error", err)
		return err
	}

	s.logger.Debug("maintenance step finished",
		"step", name,
		"swept", swept,
		"skipped", skipped)
	return nil
}
