package commands

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"daily-tracker/internal/repository"
	"daily-tracker/internal/service"
)

func seedReportDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.db")
	db, err := repository.NewDB(path, nil)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	ctx := context.Background()
	user, err := repository.NewUserRepository(db).UpsertFromTelegram(ctx, 7, "Sam", "", "")
	if err != nil {
		t.Fatal(err)
	}
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	logRepo := repository.NewRoutineLogRepository(db)
	aggregator := service.NewCompletionAggregator(logRepo, service.NewCalendar(service.KST))

	if _, err := service.NewTaskService(taskRepo, categoryRepo, nil).CreateTask(ctx, user.ID, service.TaskInput{Content: "pay rent"}); err != nil {
		t.Fatal(err)
	}
	routines := service.NewRoutineService(repository.NewRoutineRepository(db), logRepo, aggregator, nil)
	routine, err := routines.CreateRoutine(ctx, user.ID, "Read", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := routines.CompleteRoutine(ctx, user.ID, routine.ID, time.Date(2024, 1, 1, 8, 0, 0, 0, service.KST)); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReportCmd(t *testing.T) {
	path := seedReportDB(t)
	t.Setenv("TIME_ZONE", "Asia/Seoul")

	out, err := run(t, "report", "--db", path, "--telegram-id", "7", "--day", "2024-01-01")
	if err != nil {
		t.Fatalf("report error = %v\n%s", err, out)
	}
	for _, want := range []string{"Daily report", "2024-01-01", "pay rent", "✅ Read · 14% this week"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestReportCmdUnknownUser(t *testing.T) {
	path := seedReportDB(t)
	_, err := run(t, "report", "--db", path, "--telegram-id", "99")
	if err == nil || !strings.Contains(err.Error(), "no user") {
		t.Errorf("error = %v", err)
	}
}

func TestMigrateCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "planner.db")
	out, err := run(t, "migrate", "--db", path)
	if err != nil {
		t.Fatalf("migrate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Schema is up to date") {
		t.Errorf("output = %q", out)
	}
}
