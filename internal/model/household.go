package model

import "time"

// Household groups users who share one habit catalog.
type Household struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Habits    []Habit `gorm:"foreignKey:HouseholdID"`
}

// HouseholdInvite is a single-use join code. Once UsedAt is set the
// code is permanently invalid.
type HouseholdInvite struct {
	ID           uint   `gorm:"primaryKey"`
	HouseholdID  uint   `gorm:"index"`
	Code         string `gorm:"uniqueIndex"`
	UsedAt       *time.Time
	UsedByUserID *uint
	CreatedAt    time.Time
}
