package main

import (
	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/internal/handlers"
	"github.com/reviewlens/backend/pkg/logger"
)

// appServices holds all initialized handlers needed by the application.
type appServices struct {
	cfg            *config.Config
	analyzeHandler *handlers.AnalyzeHandler
	healthHandler  *handlers.HealthHandler
}

// bootstrap initializes all application dependencies.
func bootstrap(cfg *config.Config) *appServices {
	if cfg.AI.Enabled {
		logger.Infof("AI enrichment enabled: provider=%s model=%s", cfg.AI.Provider, cfg.AI.Model)
	} else {
		logger.Info().Msg("AI enrichment disabled, running heuristic analysis only")
	}
	if cfg.RapidAPI.APIKey == "" {
		logger.Warn().Msg("RapidAPI key not configured, URL-based analysis will be unavailable")
	}

	return &appServices{
		cfg:            cfg,
		analyzeHandler: handlers.NewAnalyzeHandler(cfg),
		healthHandler:  handlers.NewHealthHandler(cfg),
	}
}
