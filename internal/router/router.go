package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/vegan-dog-recipes/backend/internal/api"
	"github.com/pageza/vegan-dog-recipes/backend/internal/metrics"
	"github.com/pageza/vegan-dog-recipes/backend/internal/middleware"
	"github.com/pageza/vegan-dog-recipes/backend/internal/service"
)

// Dependencies are the services the HTTP layer is assembled from. Archive,
// DB and RateLimiter are optional.
type Dependencies struct {
	Recipes        service.IRecipeService
	Generator      service.IRecipeGenerator
	Archive        service.IRecipeArchive
	DB             api.Pinger
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger, deps.Metrics),
		middleware.Recovery(logger),
		middleware.CORS(deps.AllowedOrigins),
	)
	router.NoRoute(middleware.NoRoute)

	api.NewHealthHandler(deps.DB, logger).RegisterRoutes(router)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")

	var generateMiddleware []gin.HandlerFunc
	if deps.RateLimiter != nil {
		generateMiddleware = append(generateMiddleware, deps.RateLimiter.RateLimitMiddleware())
		v1.GET("/rate-limits/generate", deps.RateLimiter.StatusHandler())
	}

	recipeHandler := api.NewRecipeHandler(deps.Recipes, deps.Generator, deps.Archive, deps.Metrics, logger)
	recipeHandler.RegisterRoutes(v1, generateMiddleware...)

	return router
}
