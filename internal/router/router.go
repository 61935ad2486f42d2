package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-share/backend/internal/api"
	"github.com/pageza/recipe-share/backend/internal/logger"
	"github.com/pageza/recipe-share/backend/internal/middleware"
	"github.com/pageza/recipe-share/backend/internal/storage"
)

// Options configures SetupRouter.
type Options struct {
	Log         *logger.Logger
	Metrics     *middleware.Metrics
	CORSOrigins []string
	// UploadDir is served under /uploads when set. Leave empty when images
	// live in S3.
	UploadDir string
	API       api.Dependencies
}

// SetupRouter configures the application routes
func SetupRouter(opts Options) *gin.Engine {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(opts.Log),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(opts.Log),
		metrics.Middleware(),
		middleware.CORS(opts.CORSOrigins),
	)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if opts.UploadDir != "" {
		router.Static(storage.DefaultURLPrefix, opts.UploadDir)
	}

	api.RegisterRoutes(router, opts.API)
	return router
}
