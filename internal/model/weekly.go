package model

import "time"

// WeeklyEntry is one user's weekly check-in, keyed by the Monday of
// the ISO week in the user's timezone. All three payload fields are
// optional.
type WeeklyEntry struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"uniqueIndex:idx_weekly_user_week"`
	WeekStartDate string `gorm:"uniqueIndex:idx_weekly_user_week"`
	WeightKg      *float64
	WeekRating    *int
	Note          *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
