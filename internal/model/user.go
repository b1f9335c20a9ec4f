package model

import "time"

// User owns every task, category and routine. A user is known either by a
// Telegram account or by the subject of an externally issued token.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID *int64    `gorm:"uniqueIndex" json:"-"`
	ExternalID *string   `gorm:"uniqueIndex" json:"-"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	Username   string    `json:"username,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
