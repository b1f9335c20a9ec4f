package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-tracker/internal/model"
	"daily-tracker/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Content    string
	CategoryID *uint
}

// TaskService wraps task-related business logic. Mutations return the
// user's refreshed task list.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	log          *zap.Logger
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, log *zap.Logger) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo, log: log.Named("tasks")}
}

func tasksKey(userID uint) string {
	return fmt.Sprintf("tasks:%d:", userID)
}

// CreateTask stores a new task for today. Blank content writes nothing and
// returns ErrBlankInput.
func (s *TaskService) CreateTask(ctx context.Context, userID uint, input TaskInput) (*model.Task, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrBlankInput
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, userID, *input.CategoryID); err != nil {
			return nil, lookupFailure("category", err)
		}
	}

	forToday := true
	task := model.Task{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Content:    content,
		Completed:  false,
		ForToday:   &forToday,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, storageFailure(s.log, ErrTaskCreationFailed, "create task", err, zap.Uint("user", userID))
	}
	invalidate(ctx, tasksKey(userID))

	s.log.Debug("task created", zap.Uint("task", task.ID), zap.Uint("user", userID))
	return &task, nil
}

// ListTasks returns every task of the user in creation order.
func (s *TaskService) ListTasks(ctx context.Context, userID uint) ([]model.Task, error) {
	tasks, err := memoize(ctx, tasksKey(userID), func() ([]model.Task, error) {
		return s.taskRepo.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return slices.Clone(tasks), nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, lookupFailure("task", err)
	}
	return task, nil
}

// ToggleTask flips the completed flag of one task.
func (s *TaskService) ToggleTask(ctx context.Context, userID, taskID uint) ([]model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, missing(ErrUpdateFailed)
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return s.update(ctx, userID, taskID, map[string]interface{}{"completed": !task.Completed})
}

// UpdateTaskContent replaces the text of a task. Blank content is rejected
// the same way it is on create.
func (s *TaskService) UpdateTaskContent(ctx context.Context, userID, taskID uint, content string) ([]model.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrBlankInput
	}
	return s.update(ctx, userID, taskID, map[string]interface{}{"content": content})
}

// SetForToday moves a task onto or off today's list.
func (s *TaskService) SetForToday(ctx context.Context, userID, taskID uint, forToday bool) ([]model.Task, error) {
	return s.update(ctx, userID, taskID, map[string]interface{}{"for_today": forToday})
}

func (s *TaskService) update(ctx context.Context, userID, taskID uint, fields map[string]interface{}) ([]model.Task, error) {
	n, err := s.taskRepo.Update(ctx, userID, taskID, fields)
	if err != nil {
		return nil, storageFailure(s.log, ErrUpdateFailed, "update task", err, zap.Uint("user", userID), zap.Uint("task", taskID))
	}
	if n == 0 {
		return nil, missing(ErrUpdateFailed)
	}
	invalidate(ctx, tasksKey(userID))
	return s.ListTasks(ctx, userID)
}

// DeleteTask removes a task completely.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) ([]model.Task, error) {
	n, err := s.taskRepo.Delete(ctx, userID, taskID)
	if err != nil {
		return nil, storageFailure(s.log, ErrDeletionFailed, "delete task", err, zap.Uint("user", userID), zap.Uint("task", taskID))
	}
	if n == 0 {
		return nil, missing(ErrDeletionFailed)
	}
	invalidate(ctx, tasksKey(userID))

	s.log.Debug("task deleted", zap.Uint("task", taskID), zap.Uint("user", userID))
	return s.ListTasks(ctx, userID)
}
