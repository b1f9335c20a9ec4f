package model

import "time"

// DefaultRoutineColor is assigned when a routine is created without a color.
const DefaultRoutineColor = "black"

// Routine is a recurring intention. It has no done flag of its own; completion
// lives in RoutineLog rows.
type Routine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `gorm:"default:black" json:"color"`
	CreatedAt time.Time `json:"-"`
}

// RoutineLog records one routine completed on one calendar day. Date holds the
// start of that day in the planner's zone, stored in UTC.
type RoutineLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoutineID uint      `gorm:"index;uniqueIndex:idx_routine_log_day" json:"routineId"`
	UserID    uint      `gorm:"index" json:"-"`
	Date      time.Time `gorm:"uniqueIndex:idx_routine_log_day" json:"date"`
	CreatedAt time.Time `json:"-"`
}
