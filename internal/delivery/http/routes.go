package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beautycompare/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, metricsHandler http.Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := router.Group("/api")
	{
		api.GET("/search", RateLimitMiddleware(cfg.RateLimit.PerIP), handler.Search)
		api.GET("/platforms", handler.Platforms)
		api.GET("/cache-stats", handler.CacheStats)
		api.POST("/cache/clear", handler.ClearCache)
	}

	return router
}
