package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// TaskService implements the task lifecycle: creation, edits with due-date
// driven status re-derivation, the DONE/CANCELLED transitions, and listing.
type TaskService struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) *TaskService {
	return &TaskService{
		taskStore: taskStore,
		logger:    logger.With("component", "task_service"),
	}
}

// Create adds a task for the given owner. The due date must be today or
// later; tasks always start IN_PROGRESS.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, title, description string, dueDate time.Time) (*domain.Task, error) {
	if domain.Midnight(dueDate).Before(domain.Midnight(time.Now())) {
		return nil, fmt.Errorf("%w: due date cannot be in the past", domain.ErrValidation)
	}

	task, err := domain.NewTask(userID, title, description, dueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"user_id", userID,
		"due_date", task.DueDate)

	return task, nil
}

// Get retrieves a task owned by the given user.
func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return s.taskStore.GetByIDAndUserID(ctx, taskID, userID)
}

// List returns a page of the user's tasks, optionally narrowed by status and
// due date.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID, status domain.TaskStatus, dueDate time.Time, offset, limit int) (*store.TaskPage, error) {
	filter := store.TaskFilter{
		UserID:  userID,
		Status:  status,
		DueDate: dueDate,
	}
	return s.taskStore.List(ctx, filter, offset, limit)
}

// Update replaces the editable fields of a task the user owns. Terminal
// tasks reject edits. After the change, the status is re-derived from the
// new due date: a past date parks the task PENDING, a future or current one
// returns it to IN_PROGRESS.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, title, description string, dueDate time.Time) (*domain.Task, error) {
	task, err := s.taskStore.GetByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if !task.IsEditable() {
		return nil, domain.ErrInvalidStateTransition
	}

	task.Title = title
	task.Description = description
	task.DueDate = domain.Midnight(dueDate)
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	task.RederiveStatus(time.Now())

	if err := s.taskStore.Save(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task updated",
		"task_id", task.ID,
		"user_id", userID,
		"status", task.Status)

	return task, nil
}

// Done transitions a task the user owns from IN_PROGRESS to DONE.
func (s *TaskService) Done(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return s.transition(ctx, userID, taskID, (*domain.Task).MarkDone)
}

// Cancel transitions a task the user owns to CANCELLED.
func (s *TaskService) Cancel(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return s.transition(ctx, userID, taskID, (*domain.Task).Cancel)
}

func (s *TaskService) transition(ctx context.Context, userID, taskID uuid.UUID, apply func(*domain.Task) error) (*domain.Task, error) {
	task, err := s.taskStore.GetByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if err := apply(task); err != nil {
		return nil, err
	}

	if err := s.taskStore.Save(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task transitioned",
		"task_id", task.ID,
		"user_id", userID,
		"status", task.Status)

	return task, nil
}

// Delete removes a task the user owns.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.taskStore.GetByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return err
	}

	if err := s.taskStore.Delete(ctx, task.ID, task.Version); err != nil {
		return err
	}

	s.logger.Info("task deleted",
		"task_id", task.ID,
		"user_id", userID)
	return nil
}

// AdminDelete removes any task regardless of owner.
func (s *TaskService) AdminDelete(ctx context.Context, taskID uuid.UUID) error {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.taskStore.Delete(ctx, task.ID, task.Version); err != nil {
		return err
	}

	s.logger.Info("task deleted by admin", "task_id", task.ID)
	return nil
}
