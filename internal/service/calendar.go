package service

import (
	"fmt"
	"time"
)

// DayKeyLayout is the canonical calendar-date format used as a map key.
const DayKeyLayout = "2006-01-02"

// KST is the fixed zone days are cut in when no other zone is configured.
var KST = time.FixedZone("KST", 9*60*60)

// Calendar cuts timestamps into calendar days of a single fixed zone.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = KST
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return KST
	}
	return c.loc
}

// StartOfDay returns midnight of the day containing t. It is idempotent.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// EndOfDay returns the exclusive upper bound of the day containing t, which is
// the start of the following day.
func (c Calendar) EndOfDay(t time.Time) time.Time {
	return c.StartOfDay(t).AddDate(0, 0, 1)
}

func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.Location()).Format(DayKeyLayout)
}

// ParseDay reads a YYYY-MM-DD date as a day of this calendar.
func (c Calendar) ParseDay(value string) (time.Time, error) {
	day, err := time.ParseInLocation(DayKeyLayout, value, c.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return day, nil
}

// WeekOf returns the seven days, Sunday first, of the week containing t.
func (c Calendar) WeekOf(t time.Time) []time.Time {
	start := c.StartOfDay(t)
	start = start.AddDate(0, 0, -int(start.Weekday()))
	week := make([]time.Time, 7)
	for i := range week {
		week[i] = start.AddDate(0, 0, i)
	}
	return week
}

// ValidateWeek accepts exactly seven consecutive days in ascending order.
func (c Calendar) ValidateWeek(week []time.Time) error {
	if len(week) != 7 {
		return fmt.Errorf("%w: week has %d days, want 7", ErrInvalidRange, len(week))
	}
	first := c.StartOfDay(week[0])
	for i, day := range week {
		if !c.StartOfDay(day).Equal(first.AddDate(0, 0, i)) {
			return fmt.Errorf("%w: day %d is %s, want %s", ErrInvalidRange, i, c.DayKey(day), c.DayKey(first.AddDate(0, 0, i)))
		}
	}
	return nil
}

// storageDay is the value persisted in RoutineLog.Date for the day of t.
func (c Calendar) storageDay(t time.Time) time.Time {
	return c.StartOfDay(t).UTC()
}
