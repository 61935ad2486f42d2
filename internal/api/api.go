package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/recipe-share/backend/internal/middleware"
	"github.com/pageza/recipe-share/backend/internal/service"
)

// Dependencies is everything the HTTP handlers need. The rate limiters are
// nil when Redis is not configured.
type Dependencies struct {
	DB                  *gorm.DB
	AuthService         service.IAuthService
	RecipeService       service.IRecipeService
	SocialService       service.ISocialService
	MaxUploadBytes      int64
	CreationLimiter     *middleware.RateLimiter
	ModificationLimiter *middleware.RateLimiter
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	health := NewHealthHandler(deps.DB)
	router.GET("/health", health.HealthCheck)

	api := router.Group("/api")
	api.GET("/health", health.HealthCheck)

	NewAuthHandler(deps.AuthService).RegisterRoutes(api)
	NewRecipeHandler(deps.RecipeService, deps.AuthService, deps.MaxUploadBytes).
		WithRateLimits(deps.CreationLimiter, deps.ModificationLimiter).
		RegisterRoutes(api)
	NewUserHandler(deps.SocialService, deps.AuthService).RegisterRoutes(api)

	if deps.CreationLimiter != nil && deps.ModificationLimiter != nil {
		RegisterRateLimitRoutes(api, deps.AuthService, deps.CreationLimiter, deps.ModificationLimiter)
	}
}
