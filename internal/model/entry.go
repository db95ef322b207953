package model

import "time"

// DailyEntry anchors one user's values for one calendar day. The date
// is string-keyed (YYYY-MM-DD) in the user's timezone.
type DailyEntry struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex:idx_entry_user_date"`
	Date      string `gorm:"uniqueIndex:idx_entry_user_date"`
	CreatedAt time.Time
}

// DailyValue is the stored value of one habit on one day. Absence of a
// row means "not yet tracked", which is distinct from "0".
type DailyValue struct {
	ID           uint `gorm:"primaryKey"`
	DailyEntryID uint `gorm:"uniqueIndex:idx_value_entry_habit"`
	HabitID      uint `gorm:"uniqueIndex:idx_value_entry_habit"`
	Value        string
	UpdatedAt    time.Time
}
