package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

// HabitRepository manages the household habit catalog.
type HabitRepository struct {
	db *gorm.DB
}

func NewHabitRepository(db *gorm.DB) *HabitRepository {
	return &HabitRepository{db: db}
}

// ListEnabled returns the household's enabled habits in display order.
func (r *HabitRepository) ListEnabled(ctx context.Context, householdID uint) ([]model.Habit, error) {
	var habits []model.Habit
	if err := r.db.WithContext(ctx).
		Where("household_id = ? AND enabled = ?", householdID, true).
		Order("sort_order ASC, id ASC").
		Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

// Upsert creates the habit or, when a habit with the same case-folded
// title already exists in the household, refreshes its title, kind and
// sort order and re-enables it. The folding happens here rather than
// in SQL: SQLite's LOWER only folds ASCII and the catalog titles are
// Cyrillic.
func (r *HabitRepository) Upsert(ctx context.Context, householdID uint, title, kind string, sortOrder int) (created bool, err error) {
	db := r.db.WithContext(ctx)

	var habits []model.Habit
	if err := db.Where("household_id = ?", householdID).Find(&habits).Error; err != nil {
		return false, fmt.Errorf("list habits: %w", err)
	}

	for i := range habits {
		if !strings.EqualFold(strings.TrimSpace(habits[i].Title), strings.TrimSpace(title)) {
			continue
		}
		updates := map[string]interface{}{
			"title":      title,
			"kind":       kind,
			"enabled":    true,
			"sort_order": sortOrder,
		}
		if err := db.Model(&habits[i]).Updates(updates).Error; err != nil {
			return false, fmt.Errorf("update habit: %w", err)
		}
		return false, nil
	}

	habit := model.Habit{
		HouseholdID: householdID,
		Title:       title,
		Kind:        kind,
		Enabled:     true,
		SortOrder:   sortOrder,
	}
	if err := db.Create(&habit).Error; err != nil {
		return false, fmt.Errorf("create habit: %w", err)
	}
	return true, nil
}
