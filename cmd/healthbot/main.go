package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/bot"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/config"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/repository"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	householdRepo := repository.NewHouseholdRepository(db)
	habitRepo := repository.NewHabitRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	weeklyRepo := repository.NewWeeklyRepository(db)

	catalogSvc := service.NewCatalogService(habitRepo)
	checkinSvc := service.NewCheckinService(entryRepo, catalogSvc)
	summarySvc := service.NewSummaryService(entryRepo, userRepo, catalogSvc)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("timezone %q: %v, falling back to local", cfg.Timezone, err)
		loc = time.Local
	}
	scheduler := service.NewSchedulerService(loc)
	reminderSvc := service.NewReminderService(userRepo, entryRepo, weeklyRepo, scheduler, cfg.Timezone, cfg.DailyReminderTime, cfg.WeeklyReminderTime)

	wizardSvc := service.NewWizardService(weeklyRepo, userRepo, householdRepo, reminderSvc, cfg.Timezone)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, householdRepo, weeklyRepo, catalogSvc, checkinSvc, summarySvc, wizardSvc, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	reminderSvc.SetSender(telegramBot)
	telegramBot.SetReminders(reminderSvc)

	if err := reminderSvc.RebuildAll(ctx); err != nil {
		log.Printf("rebuild reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Health bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
