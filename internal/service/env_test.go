package service

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"daily-tracker/internal/repository"
)

type testEnv struct {
	tasks      *TaskService
	categories *CategoryService
	routines   *RoutineService
	aggregator *CompletionAggregator
	reminders  *ReminderService
	users      *repository.UserRepository
	calendar   Calendar
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "service.db"), nil)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := zap.NewNop()
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	logRepo := repository.NewRoutineLogRepository(db)
	calendar := NewCalendar(KST)
	aggregator := NewCompletionAggregator(logRepo, calendar)

	env := &testEnv{
		tasks:      NewTaskService(taskRepo, categoryRepo, log),
		categories: NewCategoryService(categoryRepo, taskRepo, log),
		routines:   NewRoutineService(repository.NewRoutineRepository(db), logRepo, aggregator, log),
		aggregator: aggregator,
		users:      repository.NewUserRepository(db),
		calendar:   calendar,
	}
	env.reminders = NewReminderService(env.tasks, env.categories, env.routines, aggregator)
	return env
}
