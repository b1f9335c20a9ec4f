package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"daily-tracker/internal/model"
)

func TestDailySummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.UpsertFromTelegram(ctx, 100, "Ann", "", "ann")
	if err != nil {
		t.Fatalf("UpsertFromTelegram() error = %v", err)
	}
	cats, _ := env.categories.CreateCategory(ctx, user.ID, "work", "")
	open, _ := env.tasks.CreateTask(ctx, user.ID, TaskInput{Content: "ship <release>", CategoryID: &cats[0].ID})
	done, _ := env.tasks.CreateTask(ctx, user.ID, TaskInput{Content: "old chore"})
	env.tasks.ToggleTask(ctx, user.ID, done.ID)

	read, _ := env.routines.CreateRoutine(ctx, user.ID, "Read", "")
	env.routines.CreateRoutine(ctx, user.ID, "Walk", "")
	now := time.Date(2024, 1, 3, 20, 0, 0, 0, KST)
	env.routines.CompleteRoutine(ctx, user.ID, read.ID, now)

	text, err := env.reminders.DailySummary(ctx, *user, now)
	if err != nil {
		t.Fatalf("DailySummary() error = %v", err)
	}

	for _, want := range []string{
		"2024-01-03",
		"ship &lt;release&gt;",
		"<i>(work)</i>",
		"✅ Read · 14% this week",
		"⬜ Walk · 0% this week",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "old chore") {
		t.Errorf("completed task listed in summary:\n%s", text)
	}
	if !strings.Contains(text, fmt.Sprintf("<b>#%d</b>", open.ID)) {
		t.Errorf("summary missing task id %d", open.ID)
	}
}

func TestDailySummaryEmpty(t *testing.T) {
	env := newTestEnv(t)
	text, err := env.reminders.DailySummary(context.Background(), model.User{ID: 9}, time.Now())
	if err != nil {
		t.Fatalf("DailySummary() error = %v", err)
	}
	if !strings.Contains(text, "nothing open") || !strings.Contains(text, "no routines yet") {
		t.Errorf("empty summary = %q", text)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := map[float64]string{
		0:         "0%",
		100.0 / 7: "14%",
		100:       "100%",
		300.0 / 7: "43%",
	}
	for in, want := range tests {
		if got := FormatPercent(in); got != want {
			t.Errorf("FormatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}
