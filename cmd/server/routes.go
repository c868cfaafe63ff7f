package main

import (
	"github.com/gin-gonic/gin"
	"github.com/reviewlens/backend/internal/middleware"
	"github.com/reviewlens/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for analysis routes; URL analysis burns external API quota
	analyzeLimiter := middleware.NewRateLimiter(svc.cfg.Server.RateLimitRPS, svc.cfg.Server.RateLimitBurst)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		analyze := api.Group("/analyze", analyzeLimiter.Middleware())
		{
			analyze.POST("", svc.analyzeHandler.AnalyzeURL)
			analyze.POST("/manual", svc.analyzeHandler.AnalyzeManual)
			analyze.POST("/reviews", svc.analyzeHandler.AnalyzeReviews)
		}
	}
}
