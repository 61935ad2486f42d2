package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipe-share/backend/config"
	"github.com/pageza/recipe-share/backend/internal/api"
	"github.com/pageza/recipe-share/backend/internal/database"
	"github.com/pageza/recipe-share/backend/internal/logger"
	"github.com/pageza/recipe-share/backend/internal/middleware"
	"github.com/pageza/recipe-share/backend/internal/router"
	"github.com/pageza/recipe-share/backend/internal/server"
	"github.com/pageza/recipe-share/backend/internal/service"
	"github.com/pageza/recipe-share/backend/internal/storage"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("failed to load configuration", "error", err)
	}

	log := logger.Get(cfg.LogLevel)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatalw("server error", "error", err)
	}
	log.Infow("server stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	gin.SetMode(config.GetEnvironment().GinMode())

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, log); err != nil {
		return err
	}

	images, uploadDir, err := newImageStore(cfg)
	if err != nil {
		return err
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	deps := api.Dependencies{
		DB:             db,
		AuthService:    service.NewAuthService(db, tokens, cfg.AllowAdminSignup),
		RecipeService:  service.NewRecipeService(db, images, log),
		SocialService:  service.NewSocialService(db),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	// Continue without rate limiting if Redis is not available
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(cfg, log)
		if err != nil {
			log.Warnw("rate limiting disabled", "error", err)
		} else {
			defer closeRedis(redisClient, log)
			deps.CreationLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, log)
			deps.ModificationLimiter = middleware.NewRecipeModificationRateLimiter(redisClient, log)
		}
	}

	engine := router.SetupRouter(router.Options{
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   uploadDir,
		API:         deps,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.Addr(), engine, log).Run(ctx)
}

// newImageStore returns the configured store and, for local storage, the
// directory to serve under /uploads.
func newImageStore(cfg *config.Config) (storage.ImageStore, string, error) {
	if cfg.StorageDriver == "s3" {
		s3cfg, err := config.NewS3Config(context.Background())
		if err != nil {
			return nil, "", err
		}
		return storage.NewS3Store(s3cfg), "", nil
	}

	local, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}

func closeRedis(client *redis.Client, log *logger.Logger) {
	if err := client.Close(); err != nil {
		log.Warnw("failed to close redis", "error", err)
	}
}
