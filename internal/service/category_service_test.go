package service

import (
	"context"
	"errors"
	"testing"
)

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.categories.CreateCategory(ctx, 1, "  ", "red"); !errors.Is(err, ErrBlankInput) {
		t.Errorf("CreateCategory() blank error = %v, want ErrBlankInput", err)
	}

	cats, err := env.categories.CreateCategory(ctx, 1, "health", "")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if len(cats) != 1 || cats[0].Title != "health" || cats[0].Color != nil {
		t.Errorf("CreateCategory() = %+v", cats)
	}

	cats, err = env.categories.CreateCategory(ctx, 1, "work", "blue")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if len(cats) != 2 || cats[1].Color == nil || *cats[1].Color != "blue" {
		t.Errorf("CreateCategory() = %+v", cats)
	}

	if other, _ := env.categories.ListCategories(ctx, 2); len(other) != 0 {
		t.Errorf("categories leaked to another user: %+v", other)
	}
}

func TestDeleteCategoryKeepsTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cats, _ := env.categories.CreateCategory(ctx, 1, "study", "")
	catID := cats[0].ID
	first, _ := env.tasks.CreateTask(ctx, 1, TaskInput{Content: "chapter 1", CategoryID: &catID})
	second, _ := env.tasks.CreateTask(ctx, 1, TaskInput{Content: "chapter 2", CategoryID: &catID})
	env.tasks.CreateTask(ctx, 1, TaskInput{Content: "loose"})

	inCat, err := env.categories.TasksInCategory(ctx, 1, catID)
	if err != nil {
		t.Fatalf("TasksInCategory() error = %v", err)
	}
	if len(inCat) != 2 || inCat[0].ID != first.ID || inCat[1].ID != second.ID {
		t.Errorf("TasksInCategory() = %+v", inCat)
	}
	if _, err := env.categories.TasksInCategory(ctx, 2, catID); !errors.Is(err, ErrNotFound) {
		t.Errorf("TasksInCategory() by another user error = %v, want ErrNotFound", err)
	}

	if _, err := env.categories.DeleteCategory(ctx, 2, catID); !errors.Is(err, ErrDeletionFailed) {
		t.Errorf("DeleteCategory() by another user error = %v, want ErrDeletionFailed", err)
	}

	left, err := env.categories.DeleteCategory(ctx, 1, catID)
	if err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if len(left) != 0 {
		t.Errorf("DeleteCategory() left %+v", left)
	}

	tasks, _ := env.tasks.ListTasks(ctx, 1)
	if len(tasks) != 3 {
		t.Fatalf("tasks after category delete = %d, want 3", len(tasks))
	}
	for _, task := range tasks {
		if task.CategoryID != nil {
			t.Errorf("task %d still points at category %d", task.ID, *task.CategoryID)
		}
	}
}
