package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/reviewlens/backend/internal/config"
)

// HealthHandler reports service status and which optional integrations are
// configured.
type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// CheckHealth returns the health status of the service.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "reviewlens",
		"components": gin.H{
			"ai_enrichment": h.cfg.AI.Enabled,
			"rapidapi":      h.cfg.RapidAPI.APIKey != "",
		},
	})
}
