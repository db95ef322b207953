package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register finds or creates a user by Telegram ID and refreshes chat
// and profile fields. The household is only set on first creation;
// joining another household goes through RedeemInvite.
func (r *UserRepository) Register(ctx context.Context, telegramID, chatID int64, householdID uint, timezone, firstName, username string) (*model.User, bool, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"chat_id":    chatID,
			"first_name": firstName,
			"username":   username,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, false, fmt.Errorf("update user: %w", err)
		}
		return &user, false, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			TelegramID:       telegramID,
			ChatID:           chatID,
			HouseholdID:      &householdID,
			Timezone:         timezone,
			FirstName:        firstName,
			Username:         username,
			RemindersEnabled: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		return &user, true, nil
	default:
		return nil, false, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListByHousehold(ctx context.Context, householdID uint) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("first_name ASC, id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetReminderTime stores the normalized HH:MM time and force-enables
// reminders, matching the reminder wizard contract.
func (r *UserRepository) SetReminderTime(ctx context.Context, userID uint, hhmm string) error {
	updates := map[string]interface{}{
		"reminder_time":     hhmm,
		"reminders_enabled": true,
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return fmt.Errorf("set reminder time: %w", err)
	}
	return nil
}

func (r *UserRepository) SetRemindersEnabled(ctx context.Context, userID uint, enabled bool) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("reminders_enabled", enabled).Error; err != nil {
		return fmt.Errorf("set reminders enabled: %w", err)
	}
	return nil
}
