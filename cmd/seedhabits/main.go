package main

import (
	"context"
	"flag"
	"log"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/config"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/repository"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/service"
)

// seedhabits loads the habit catalog file into the database,
// upserting by title so re-runs are safe.
func main() {
	household := flag.String("household", "Family", "household name to seed habits into")
	file := flag.String("file", "", "habit catalog file (defaults to HABITS_FILE)")
	flag.Parse()

	cfg := config.LoadTooling()
	path := cfg.HabitsFile
	if *file != "" {
		path = *file
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	householdRepo := repository.NewHouseholdRepository(db)
	catalogSvc := service.NewCatalogService(repository.NewHabitRepository(db))

	ctx := context.Background()
	hh, err := householdRepo.Ensure(ctx, *household)
	if err != nil {
		log.Fatalf("household: %v", err)
	}

	n, err := catalogSvc.SeedFromFile(ctx, hh.ID, path)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("[info] seeded %d habits into %q from %s", n, hh.Name, path)
}
