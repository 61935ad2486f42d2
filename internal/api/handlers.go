package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/recipe-share/backend/internal/database"
	"github.com/pageza/recipe-share/backend/internal/middleware"
	"github.com/pageza/recipe-share/backend/internal/service"
)

// HealthHandler reports whether the API can reach its database.
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx, h.db); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "ok",
	})
}

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(router *gin.RouterGroup, authService service.IAuthService, creationLimiter, modificationLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits")
	rateLimits.Use(middleware.AuthMiddleware(authService))
	{
		rateLimits.GET("/recipe-creation", func(c *gin.Context) {
			identity, ok := requireIdentity(c)
			if !ok {
				return
			}
			writeRateLimitStatus(c, creationLimiter, identity.ID.String(), "")
		})

		rateLimits.GET("/recipe-modification/:recipe_id", func(c *gin.Context) {
			identity, ok := requireIdentity(c)
			if !ok {
				return
			}
			recipeID := c.Param("recipe_id")
			writeRateLimitStatus(c, modificationLimiter, identity.ID.String()+":"+recipeID, recipeID)
		})
	}
}

func writeRateLimitStatus(c *gin.Context, limiter *middleware.RateLimiter, subject, recipeID string) {
	remaining, resetTime, err := limiter.Remaining(c.Request.Context(), subject)
	if err != nil {
		respondError(c, err, "failed to check rate limit")
		return
	}

	cfg := limiter.Config()
	c.JSON(http.StatusOK, rateLimitStatus{
		Limit:     cfg.Limit,
		Remaining: remaining,
		ResetTime: resetTime.Unix(),
		Window:    cfg.Window.String(),
		RecipeID:  recipeID,
	})
}
