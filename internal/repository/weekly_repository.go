package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

// WeeklyRepository handles weekly check-in entries.
type WeeklyRepository struct {
	db *gorm.DB
}

func NewWeeklyRepository(db *gorm.DB) *WeeklyRepository {
	return &WeeklyRepository{db: db}
}

// Upsert writes the entry for (user, week start), replacing all three
// payload fields on conflict.
func (r *WeeklyRepository) Upsert(ctx context.Context, entry *model.WeeklyEntry) error {
	entry.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight_kg", "week_rating", "note", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("upsert weekly entry: %w", err)
	}
	return nil
}

// Find returns the entry for (user, week start) or gorm.ErrRecordNotFound.
func (r *WeeklyRepository) Find(ctx context.Context, userID uint, weekStart string) (*model.WeeklyEntry, error) {
	var entry model.WeeklyEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_start_date = ?", userID, weekStart).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
