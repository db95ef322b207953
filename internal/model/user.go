package model

import "time"

// User stores Telegram user metadata and reminder preferences.
type User struct {
	ID               uint  `gorm:"primaryKey"`
	TelegramID       int64 `gorm:"uniqueIndex"`
	ChatID           int64
	HouseholdID      *uint `gorm:"index"`
	Timezone         string
	FirstName        string
	Username         string
	RemindersEnabled bool    `gorm:"default:true"`
	ReminderTime     *string // HH:MM in the user's timezone
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
