package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"daily-tracker/internal/model"
	"daily-tracker/internal/repository"
)

// DaySets maps a day key (YYYY-MM-DD) to the routines completed that day.
type DaySets map[string]map[uint]struct{}

func (d DaySets) add(day string, routineID uint) {
	set, ok := d[day]
	if !ok {
		set = make(map[uint]struct{})
		d[day] = set
	}
	set[routineID] = struct{}{}
}

// Has reports whether routineID was completed on day.
func (d DaySets) Has(day string, routineID uint) bool {
	_, ok := d[day][routineID]
	return ok
}

// RoutineIDs returns the routines completed on day in ascending order.
func (d DaySets) RoutineIDs(day string) []uint {
	ids := make([]uint, 0, len(d[day]))
	for id := range d[day] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// WeekReport holds completion sets for a seven day window.
type WeekReport struct {
	Week []time.Time
	Days DaySets
	keys []string
}

// DayKeys returns the window's day keys in order.
func (r *WeekReport) DayKeys() []string {
	return slices.Clone(r.keys)
}

// Percent is the share of the window's days on which routineID was completed,
// in [0, 100] and not rounded.
func (r *WeekReport) Percent(routineID uint) float64 {
	if len(r.keys) == 0 {
		return 0
	}
	done := 0
	for _, key := range r.keys {
		if r.Days.Has(key, routineID) {
			done++
		}
	}
	return float64(done) / float64(len(r.keys)) * 100
}

// CompletionAggregator answers which routines were completed on which days.
type CompletionAggregator struct {
	logRepo  *repository.RoutineLogRepository
	calendar Calendar
}

func NewCompletionAggregator(logRepo *repository.RoutineLogRepository, calendar Calendar) *CompletionAggregator {
	return &CompletionAggregator{logRepo: logRepo, calendar: calendar}
}

func (a *CompletionAggregator) Calendar() Calendar {
	return a.calendar
}

func logsKey(userID uint) string {
	return fmt.Sprintf("logs:%d:", userID)
}

func (a *CompletionAggregator) logsBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.RoutineLog, error) {
	from, to = from.UTC(), to.UTC()
	key := fmt.Sprintf("%s%d-%d", logsKey(userID), from.Unix(), to.Unix())
	logs, err := memoize(ctx, key, func() ([]model.RoutineLog, error) {
		return a.logRepo.ListInRange(ctx, userID, from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("list routine logs: %w", err)
	}
	return slices.Clone(logs), nil
}

// LogsForDay returns the user's completions on the calendar day of day.
func (a *CompletionAggregator) LogsForDay(ctx context.Context, userID uint, day time.Time) ([]model.RoutineLog, error) {
	return a.logsBetween(ctx, userID, a.calendar.StartOfDay(day), a.calendar.EndOfDay(day))
}

// LogsForWeek returns the user's completions from the first to the last day
// of week, which must be seven consecutive ascending days.
func (a *CompletionAggregator) LogsForWeek(ctx context.Context, userID uint, week []time.Time) ([]model.RoutineLog, error) {
	if err := a.calendar.ValidateWeek(week); err != nil {
		return nil, err
	}
	return a.logsBetween(ctx, userID, a.calendar.StartOfDay(week[0]), a.calendar.EndOfDay(week[6]))
}

// DaySets folds logs into per-day routine sets. Duplicate logs collapse.
func (a *CompletionAggregator) DaySets(logs []model.RoutineLog) DaySets {
	sets := make(DaySets)
	for _, entry := range logs {
		sets.add(a.calendar.DayKey(entry.Date), entry.RoutineID)
	}
	return sets
}

// WeeklyCompletion builds the completion sets for week.
func (a *CompletionAggregator) WeeklyCompletion(ctx context.Context, userID uint, week []time.Time) (*WeekReport, error) {
	logs, err := a.LogsForWeek(ctx, userID, week)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(week))
	for i, day := range week {
		keys[i] = a.calendar.DayKey(day)
	}
	return &WeekReport{
		Week: slices.Clone(week),
		Days: a.DaySets(logs),
		keys: keys,
	}, nil
}
