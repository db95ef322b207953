package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken      string
	DatabaseURL        string
	Timezone           string
	DailyReminderTime  string // HH:MM fallback when a user set no time
	WeeklyReminderTime string // HH:MM, Sunday, org-wide
	HabitsFile         string
}

// Load reads configuration from the environment (and an optional .env
// file) with sane defaults. The bot token is mandatory.
func Load() (Config, error) {
	cfg := LoadTooling()
	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return cfg, nil
}

// LoadTooling is Load without the token requirement, for maintenance
// commands that touch only the database.
func LoadTooling() Config {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:      strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Timezone:           strings.TrimSpace(os.Getenv("TIMEZONE")),
		DailyReminderTime:  strings.TrimSpace(os.Getenv("DAILY_REMINDER_TIME")),
		WeeklyReminderTime: strings.TrimSpace(os.Getenv("WEEKLY_REMINDER_TIME")),
		HabitsFile:         strings.TrimSpace(os.Getenv("HABITS_FILE")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "health_bot.db"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Kiev"
	}
	if cfg.DailyReminderTime == "" {
		cfg.DailyReminderTime = "21:00"
	}
	if cfg.WeeklyReminderTime == "" {
		cfg.WeeklyReminderTime = "12:00"
	}
	if cfg.HabitsFile == "" {
		cfg.HabitsFile = "fields.txt"
	}

	return cfg
}
