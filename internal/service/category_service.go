package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"daily-tracker/internal/model"
	"daily-tracker/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo     *repository.CategoryRepository
	taskRepo *repository.TaskRepository
	log      *zap.Logger
}

func NewCategoryService(repo *repository.CategoryRepository, taskRepo *repository.TaskRepository, log *zap.Logger) *CategoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{repo: repo, taskRepo: taskRepo, log: log.Named("categories")}
}

func categoriesKey(userID uint) string {
	return fmt.Sprintf("categories:%d:", userID)
}

// CreateCategory adds a category and returns the refreshed list. An empty
// color is stored as NULL.
func (s *CategoryService) CreateCategory(ctx context.Context, userID uint, title, color string) ([]model.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrBlankInput
	}

	category := model.Category{UserID: userID, Title: title}
	if color = strings.TrimSpace(color); color != "" {
		category.Color = &color
	}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, storageFailure(s.log, ErrCreationFailed, "create category", err, zap.Uint("user", userID))
	}
	invalidate(ctx, categoriesKey(userID))
	return s.ListCategories(ctx, userID)
}

func (s *CategoryService) ListCategories(ctx context.Context, userID uint) ([]model.Category, error) {
	categories, err := memoize(ctx, categoriesKey(userID), func() ([]model.Category, error) {
		return s.repo.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return slices.Clone(categories), nil
}

// DeleteCategory removes a category. Its tasks are kept and lose the category.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID uint) ([]model.Category, error) {
	n, err := s.repo.Delete(ctx, userID, categoryID)
	if err != nil {
		return nil, storageFailure(s.log, ErrDeletionFailed, "delete category", err, zap.Uint("user", userID), zap.Uint("category", categoryID))
	}
	if n == 0 {
		return nil, missing(ErrDeletionFailed)
	}
	invalidate(ctx, categoriesKey(userID))
	invalidate(ctx, tasksKey(userID))
	return s.ListCategories(ctx, userID)
}

// TasksInCategory lists the tasks filed under one of the user's categories,
// oldest first.
func (s *CategoryService) TasksInCategory(ctx context.Context, userID, categoryID uint) ([]model.Task, error) {
	if _, err := s.repo.FindByID(ctx, userID, categoryID); err != nil {
		return nil, lookupFailure("category", err)
	}
	tasks, err := s.taskRepo.ListByCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list tasks in category: %w", err)
	}
	return tasks, nil
}
