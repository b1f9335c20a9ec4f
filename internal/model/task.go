package model

import "time"

// Task represents a single item in the planner.
type Task struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index" json:"-"`
	CategoryID *uint     `gorm:"index" json:"categoryId"`
	Content    string    `gorm:"not null" json:"content"`
	Completed  bool      `gorm:"default:false" json:"completed"`
	ForToday   *bool     `json:"forToday"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
