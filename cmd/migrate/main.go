package main

import (
	"flag"

	"github.com/pageza/recipe-share/backend/config"
	"github.com/pageza/recipe-share/backend/internal/database"
	"github.com/pageza/recipe-share/backend/internal/logger"
)

func main() {
	// Parse command line flags
	drop := flag.Bool("drop", false, "Drop all tables before migrating")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("failed to load configuration", "error", err)
	}
	log := logger.Get(cfg.LogLevel)
	defer log.Sync()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer database.Close(db)

	if *drop {
		log.Warnw("dropping all tables")
		if err := database.DropAll(db); err != nil {
			log.Fatalw("failed to drop tables", "error", err)
		}
	}

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatalw("migration failed", "error", err)
	}
	log.Infow("migrations applied")
}
