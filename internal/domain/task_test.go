package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("starts in progress with midnight due date", func(t *testing.T) {
		t.Parallel()
		due := time.Date(2026, 9, 15, 17, 45, 12, 0, time.UTC)
		task, err := NewTask(uuid.New(), "  write report ", "quarterly numbers", due)
		require.NoError(t, err)

		assert.Equal(t, TaskStatusInProgress, task.Status)
		assert.Equal(t, "write report", task.Title)
		assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), task.DueDate)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()
		due := time.Now().Add(24 * time.Hour)

		_, err := NewTask(uuid.Nil, "title", "", due)
		assert.ErrorIs(t, err, ErrEmptyTaskOwner)

		_, err = NewTask(uuid.New(), "", "", due)
		assert.ErrorIs(t, err, ErrEmptyTaskTitle)

		_, err = NewTask(uuid.New(), string(make([]byte, 51)), "", due)
		assert.ErrorIs(t, err, ErrTaskTitleLong)
	})
}

func TestTaskTransitions(t *testing.T) {
	t.Parallel()

	newTask := func(t *testing.T, status TaskStatus) *Task {
		t.Helper()
		task, err := NewTask(uuid.New(), "task", "", time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		task.Status = status
		return task
	}

	t.Run("done only from in progress", func(t *testing.T) {
		t.Parallel()
		task := newTask(t, TaskStatusInProgress)
		require.NoError(t, task.MarkDone())
		assert.Equal(t, TaskStatusDone, task.Status)

		for _, status := range []TaskStatus{TaskStatusPending, TaskStatusDone, TaskStatusCancelled} {
			task := newTask(t, status)
			assert.ErrorIs(t, task.MarkDone(), ErrInvalidStateTransition, "from %s", status)
		}
	})

	t.Run("cancel from in progress or pending", func(t *testing.T) {
		t.Parallel()
		for _, status := range []TaskStatus{TaskStatusInProgress, TaskStatusPending} {
			task := newTask(t, status)
			require.NoError(t, task.Cancel(), "from %s", status)
			assert.Equal(t, TaskStatusCancelled, task.Status)
		}

		for _, status := range []TaskStatus{TaskStatusDone, TaskStatusCancelled} {
			task := newTask(t, status)
			assert.ErrorIs(t, task.Cancel(), ErrInvalidStateTransition, "from %s", status)
		}
	})

	t.Run("terminal statuses are not editable", func(t *testing.T) {
		t.Parallel()
		assert.True(t, newTask(t, TaskStatusInProgress).IsEditable())
		assert.True(t, newTask(t, TaskStatusPending).IsEditable())
		assert.False(t, newTask(t, TaskStatusDone).IsEditable())
		assert.False(t, newTask(t, TaskStatusCancelled).IsEditable())
	})
}

func TestRederiveStatus(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		status  TaskStatus
		dueDate time.Time
		want    TaskStatus
	}{
		{"in progress with past due date parks pending", TaskStatusInProgress, today.AddDate(0, 0, -1), TaskStatusPending},
		{"in progress due today stays", TaskStatusInProgress, today, TaskStatusInProgress},
		{"pending with future due date resumes", TaskStatusPending, today.AddDate(0, 0, 3), TaskStatusInProgress},
		{"pending due today resumes", TaskStatusPending, today, TaskStatusInProgress},
		{"pending still past stays pending", TaskStatusPending, today.AddDate(0, 0, -5), TaskStatusPending},
		{"done is untouched", TaskStatusDone, today.AddDate(0, 0, -5), TaskStatusDone},
		{"cancelled is untouched", TaskStatusCancelled, today.AddDate(0, 0, -5), TaskStatusCancelled},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			task := &Task{
				ID:      uuid.New(),
				UserID:  uuid.New(),
				Title:   "task",
				DueDate: Midnight(tc.dueDate),
				Status:  tc.status,
			}
			task.RederiveStatus(today)
			assert.Equal(t, tc.want, task.Status)
		})
	}
}

func TestIsOverdue(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	task := &Task{Status: TaskStatusInProgress, DueDate: today.AddDate(0, 0, -1)}

	assert.True(t, task.IsOverdue(today))

	task.DueDate = today
	assert.False(t, task.IsOverdue(today), "due today is not overdue")

	task.DueDate = today.AddDate(0, 0, -1)
	task.Status = TaskStatusPending
	assert.False(t, task.IsOverdue(today), "only in-progress tasks are overdue")
}
