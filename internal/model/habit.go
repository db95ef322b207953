package model

import "time"

// Habit kinds. Boolean habits store "1"/"0", choice habits store one
// of three mood glyphs.
const (
	HabitKindBoolean = "boolean"
	HabitKindChoice  = "choice"
)

// Habit is one tracked item in a household's catalog. Habits are never
// hard-deleted, only disabled.
type Habit struct {
	ID          uint `gorm:"primaryKey"`
	HouseholdID uint `gorm:"index"`
	Title       string
	Kind        string
	Enabled     bool `gorm:"default:true"`
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
