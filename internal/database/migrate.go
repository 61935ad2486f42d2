package database

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipe-share/backend/internal/logger"
	"github.com/pageza/recipe-share/backend/internal/model"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Models lists every table managed by the application, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Recipe{},
		&model.RecipeFavorite{},
		&model.RecipeLike{},
	}
}

// RunMigrations brings the schema up to date. SQLite is migrated from the
// gorm models; PostgreSQL runs the embedded SQL files in name order and
// records each one in the migrations table.
func RunMigrations(db *gorm.DB, log *logger.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Infow("using gorm auto-migration for sqlite")
		return db.AutoMigrate(Models()...)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, path := range names {
		name := strings.TrimPrefix(path, "migrations/")

		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debugw("skipping migration", "name", name)
			continue
		}

		content, err := migrationFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Infow("applied migration", "name", name)
	}

	return nil
}

// DropAll removes every application table, children first.
func DropAll(db *gorm.DB) error {
	tables := Models()
	for i, j := 0, len(tables)-1; i < j; i, j = i+1, j-1 {
		tables[i], tables[j] = tables[j], tables[i]
	}
	if err := db.Migrator().DropTable(tables...); err != nil {
		return err
	}
	return db.Migrator().DropTable("migrations")
}
