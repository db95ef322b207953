package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

// HouseholdRepository manages households and their invite codes.
type HouseholdRepository struct {
	db *gorm.DB
}

func NewHouseholdRepository(db *gorm.DB) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

// Ensure returns the household with the given name, creating it on
// first use. Households are never deleted.
func (r *HouseholdRepository) Ensure(ctx context.Context, name string) (*model.Household, error) {
	var household model.Household
	db := r.db.WithContext(ctx)
	err := db.Where("name = ?", name).First(&household).Error
	switch {
	case err == nil:
		return &household, nil
	case err == gorm.ErrRecordNotFound:
		household = model.Household{Name: name}
		if err := db.Create(&household).Error; err != nil {
			return nil, fmt.Errorf("create household: %w", err)
		}
		return &household, nil
	default:
		return nil, fmt.Errorf("find household: %w", err)
	}
}

func (r *HouseholdRepository) CreateInvite(ctx context.Context, householdID uint, code string) (*model.HouseholdInvite, error) {
	invite := model.HouseholdInvite{HouseholdID: householdID, Code: code}
	if err := r.db.WithContext(ctx).Create(&invite).Error; err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	return &invite, nil
}

// ErrInviteInvalid covers both unknown and already-used codes; callers
// show one guidance message for either.
var ErrInviteInvalid = fmt.Errorf("invalid or already used invite code")

// RedeemInvite atomically consumes an unused invite and attaches the
// user identified by telegramID to its household, creating the user
// row when they never ran the registration command.
func (r *HouseholdRepository) RedeemInvite(ctx context.Context, code string, telegramID, chatID int64, timezone, firstName, username string) (*model.User, error) {
	var joined model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite model.HouseholdInvite
		if err := tx.Where("code = ?", code).First(&invite).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrInviteInvalid
			}
			return fmt.Errorf("find invite: %w", err)
		}
		if invite.UsedAt != nil {
			return ErrInviteInvalid
		}

		var user model.User
		err := tx.Where("telegram_id = ?", telegramID).First(&user).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"chat_id":      chatID,
				"household_id": invite.HouseholdID,
				"timezone":     timezone,
				"first_name":   firstName,
				"username":     username,
			}
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return fmt.Errorf("attach user: %w", err)
			}
			user.HouseholdID = &invite.HouseholdID
		case err == gorm.ErrRecordNotFound:
			user = model.User{
				TelegramID:       telegramID,
				ChatID:           chatID,
				HouseholdID:      &invite.HouseholdID,
				Timezone:         timezone,
				FirstName:        firstName,
				Username:         username,
				RemindersEnabled: true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}
		default:
			return fmt.Errorf("find user: %w", err)
		}

		now := time.Now()
		used := map[string]interface{}{
			"used_at":         now,
			"used_by_user_id": user.ID,
		}
		if err := tx.Model(&invite).Updates(used).Error; err != nil {
			return fmt.Errorf("mark invite used: %w", err)
		}

		joined = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &joined, nil
}
