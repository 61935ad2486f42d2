package main

import (
	"context"
	"errors"

	"github.com/pageza/recipe-share/backend/config"
	"github.com/pageza/recipe-share/backend/internal/database"
	"github.com/pageza/recipe-share/backend/internal/logger"
	"github.com/pageza/recipe-share/backend/internal/model"
	"github.com/pageza/recipe-share/backend/internal/service"
)

// Shared by every seeded account.
const password = "testpassword123"

var testUsers = []struct {
	username string
	email    string
	role     model.Role
}{
	{"johndoe", "john.doe@example.com", model.RoleUser},
	{"janesmith", "jane.smith@example.com", model.RoleUser},
	{"bobwilson", "bob.wilson@example.com", model.RoleUser},
	{"alicecooper", "alice.cooper@example.com", model.RoleUser},
	{"editor", "editor@example.com", model.RoleAdmin},
}

func main() {
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

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatalw("migration failed", "error", err)
	}

	// Admin seeding bypasses ALLOW_ADMIN_SIGNUP
	auth := service.NewAuthService(db, service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), true)
	ctx := context.Background()

	for _, u := range testUsers {
		_, err := auth.Register(ctx, service.RegisterInput{
			Username: u.username,
			Email:    u.email,
			Password: password,
			Role:     u.role,
		})
		switch {
		case errors.Is(err, service.ErrConflict):
			log.Infow("user exists, skipping", "email", u.email)
		case err != nil:
			log.Fatalw("failed to create user", "email", u.email, "error", err)
		default:
			log.Infow("created test user", "email", u.email, "role", u.role)
		}
	}
	log.Infow("test users ready", "password", password)
}
