package service

import (
	"context"
	"fmt"
	"html"
	"math"
	"sort"
	"strings"
	"time"

	"daily-tracker/internal/model"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	tasks      *TaskService
	categories *CategoryService
	routines   *RoutineService
	aggregator *CompletionAggregator
}

func NewReminderService(tasks *TaskService, categories *CategoryService, routines *RoutineService, aggregator *CompletionAggregator) *ReminderService {
	return &ReminderService{tasks: tasks, categories: categories, routines: routines, aggregator: aggregator}
}

// DailySummary renders open tasks, today's routines and this week's routine
// completion as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	ctx = WithRequestCache(ctx)

	tasks, err := s.tasks.ListTasks(ctx, user.ID)
	if err != nil {
		return "", err
	}
	categories, err := s.categories.ListCategories(ctx, user.ID)
	if err != nil {
		return "", err
	}
	today, err := s.routines.RoutinesForDay(ctx, user.ID, now)
	if err != nil {
		return "", err
	}
	calendar := s.aggregator.Calendar()
	week, err := s.aggregator.WeeklyCompletion(ctx, user.ID, calendar.WeekOf(now))
	if err != nil {
		return "", err
	}

	catNames := make(map[uint]string, len(categories))
	for _, cat := range categories {
		catNames[cat.ID] = cat.Title
	}

	var pending []model.Task
	for _, task := range tasks {
		if !task.Completed {
			pending = append(pending, task)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return isForToday(pending[i]) && !isForToday(pending[j])
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", calendar.DayKey(now)))

	builder.WriteString("🔥 <b>Open tasks</b>\n")
	if len(pending) == 0 {
		builder.WriteString("· nothing open\n")
	}
	for _, task := range pending {
		builder.WriteString(FormatTaskLine(task, catNames))
	}

	builder.WriteString("\n♻️ <b>Routines today</b>\n")
	if len(today) == 0 {
		builder.WriteString("· no routines yet\n")
	}
	for _, status := range today {
		mark := "⬜"
		if status.Complete {
			mark = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s %s · %s this week\n",
			mark, html.EscapeString(status.Name), FormatPercent(week.Percent(status.ID))))
	}

	return strings.TrimSpace(builder.String()), nil
}

// FormatTaskLine renders one task as a single HTML line.
func FormatTaskLine(task model.Task, catNames map[uint]string) string {
	var sb strings.Builder
	icon := "🟢"
	if task.Completed {
		icon = "✔️"
	} else if isForToday(task) {
		icon = "⏳"
	}
	sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s", icon, task.ID, html.EscapeString(strings.TrimSpace(task.Content))))
	if task.CategoryID != nil {
		if name := strings.TrimSpace(catNames[*task.CategoryID]); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

// FormatPercent rounds a completion percentage for display.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", math.Round(p))
}

func isForToday(task model.Task) bool {
	return task.ForToday != nil && *task.ForToday
}
