package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

// EntryRepository handles daily entries and their habit values.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// GetOrCreate returns the entry for (user, date), creating it lazily.
// Concurrent opens race on the unique (user_id, date) index; the loser
// re-fetches, so both converge on the same row.
func (r *EntryRepository) GetOrCreate(ctx context.Context, userID uint, date string) (*model.DailyEntry, error) {
	db := r.db.WithContext(ctx)

	var entry model.DailyEntry
	err := db.Where("user_id = ? AND date = ?", userID, date).First(&entry).Error
	if err == nil {
		return &entry, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("find entry: %w", err)
	}

	entry = model.DailyEntry{UserID: userID, Date: date}
	if err := db.Create(&entry).Error; err != nil {
		var existing model.DailyEntry
		if ferr := db.Where("user_id = ? AND date = ?", userID, date).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return &entry, nil
}

// Find returns the entry for (user, date) without creating it.
func (r *EntryRepository) Find(ctx context.Context, userID uint, date string) (*model.DailyEntry, error) {
	var entry model.DailyEntry
	if err := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Values returns the stored raw value per habit for one entry.
func (r *EntryRepository) Values(ctx context.Context, entryID uint) (map[uint]string, error) {
	var rows []model.DailyValue
	if err := r.db.WithContext(ctx).Where("daily_entry_id = ?", entryID).Find(&rows).Error; err != nil {
		return nil, err
	}
	values := make(map[uint]string, len(rows))
	for _, row := range rows {
		values[row.HabitID] = row.Value
	}
	return values, nil
}

// SetValue upserts one habit's value for an entry, last write wins.
func (r *EntryRepository) SetValue(ctx context.Context, entryID, habitID uint, value string) error {
	row := model.DailyValue{
		DailyEntryID: entryID,
		HabitID:      habitID,
		Value:        value,
		UpdatedAt:    time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "daily_entry_id"}, {Name: "habit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	return nil
}

// CountValues reports how many habit values an entry has. The daily
// reminder suppression predicate only needs zero vs non-zero.
func (r *EntryRepository) CountValues(ctx context.Context, entryID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.DailyValue{}).
		Where("daily_entry_id = ?", entryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListSince returns the user's entries with date >= since, newest first.
func (r *EntryRepository) ListSince(ctx context.Context, userID uint, since string) ([]model.DailyEntry, error) {
	var entries []model.DailyEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DatedValue is one habit value joined with its entry date, as used by
// the summary aggregations.
type DatedValue struct {
	Date    string
	HabitID uint
	Value   string
}

// ValuesForDates returns every stored value the user has on any of the
// given dates.
func (r *EntryRepository) ValuesForDates(ctx context.Context, userID uint, dates []string) ([]DatedValue, error) {
	var rows []DatedValue
	err := r.db.WithContext(ctx).Model(&model.DailyValue{}).
		Select("daily_entries.date AS date, daily_values.habit_id AS habit_id, daily_values.value AS value").
		Joins("JOIN daily_entries ON daily_entries.id = daily_values.daily_entry_id").
		Where("daily_entries.user_id = ? AND daily_entries.date IN ?", userID, dates).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("values for dates: %w", err)
	}
	return rows, nil
}
