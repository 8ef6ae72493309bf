package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common task validation errors
var (
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwner = errors.New("task owner cannot be empty")
	ErrEmptyTaskTitle = errors.New("task title cannot be empty")
	ErrTaskTitleLong  = errors.New("task title must be at most 50 characters long")
	ErrEmptyDueDate   = errors.New("task due date cannot be empty")
)

// TaskStatus is the lifecycle status of a task.
type TaskStatus string

// Task status values. DONE and CANCELLED are terminal: no further edits
// or transitions are allowed from them.
const (
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// ParseTaskStatus converts a case-insensitive string into a TaskStatus.
// Returns false if the value does not name a known status.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case TaskStatusInProgress:
		return TaskStatusInProgress, true
	case TaskStatusPending:
		return TaskStatusPending, true
	case TaskStatusDone:
		return TaskStatusDone, true
	case TaskStatusCancelled:
		return TaskStatusCancelled, true
	}
	return "", false
}

// Task represents a unit of work owned by a user.
//
// DueDate carries date precision only (midnight UTC). CreatedAt/UpdatedAt
// and Version are server-assigned by the store layer on every persisted
// mutation and are never client-writable.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status"`
	Version     int64      `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a task for the given owner. Tasks start IN_PROGRESS.
func NewTask(userID uuid.UUID, title, description string, dueDate time.Time) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		DueDate:     Midnight(dueDate),
		Status:      TaskStatusInProgress,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if len(t.Title) > 50 {
		return ErrTaskTitleLong
	}
	if t.DueDate.IsZero() {
		return ErrEmptyDueDate
	}
	return nil
}

// IsEditable reports whether the task can still receive field updates.
// DONE and CANCELLED tasks block further edits.
func (t *Task) IsEditable() bool {
	return t.Status == TaskStatusInProgress || t.Status == TaskStatusPending
}

// MarkDone transitions IN_PROGRESS -> DONE.
// Any other starting status is a state conflict.
func (t *Task) MarkDone() error {
	if t.Status != TaskStatusInProgress {
		return ErrInvalidStateTransition
	}
	t.Status = TaskStatusDone
	return nil
}

// Cancel transitions IN_PROGRESS/PENDING -> CANCELLED.
// Any other starting status is a state conflict.
func (t *Task) Cancel() error {
	if t.Status != TaskStatusInProgress && t.Status != TaskStatusPending {
		return ErrInvalidStateTransition
	}
	t.Status = TaskStatusCancelled
	return nil
}

// RederiveStatus keeps the status consistent with the due date after an
// interactive edit: an IN_PROGRESS task whose new due date is already past
// becomes PENDING, and a PENDING task whose new due date is today or later
// becomes IN_PROGRESS. The comparison uses the new due date against today.
func (t *Task) RederiveStatus(today time.Time) {
	today = Midnight(today)
	switch {
	case t.Status == TaskStatusInProgress && t.DueDate.Before(today):
		t.Status = TaskStatusPending
	case t.Status == TaskStatusPending && !t.DueDate.Before(today):
		t.Status = TaskStatusInProgress
	}
}

// IsOverdue reports whether an IN_PROGRESS task's due date has passed.
// This is the predicate the overdue sweep re-derives on every run.
func (t *Task) IsOverdue(today time.Time) bool {
	return t.Status == TaskStatusInProgress && t.DueDate.Before(Midnight(today))
}

// Midnight truncates a timestamp to date precision in UTC.
func Midnight(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
