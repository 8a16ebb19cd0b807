package http

import (
	"github.com/JAChelton/ai-inventory-tracker/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// The client IP keys the rate limiter, so forwarding headers count only from listed proxies.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Error().Err(err).Strs("trusted_proxies", cfg.Server.TrustedProxies).Msg("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(cfg.Server.Environment, logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	inventory := router.Group("/api/inventory")
	{
		inventory.GET("/base", handler.BaseInventory)
		inventory.POST("/analyze", handler.AnalyzeItem)
	}

	return router
}
