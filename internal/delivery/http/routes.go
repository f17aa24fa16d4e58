package http

import (
	"github.com/gin-gonic/gin"
	"github.com/productfinder/backend/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Operational endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rateLimit := RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst)

	// Unversioned path kept for existing storefront clients
	router.POST("/recommend", rateLimit, handler.Recommend)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(rateLimit)
	{
		recommend := v1.Group("/recommend")
		{
			recommend.POST("", handler.Recommend)
			recommend.POST("/explain", handler.Explain)
		}
	}

	return router
}
