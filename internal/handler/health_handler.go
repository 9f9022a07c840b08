package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatsFunc reports one component's state for the health check
type StatsFunc func() any

// HealthHandler handles the liveness check
type HealthHandler struct {
	version   string
	startedAt time.Time
	stats     map[string]StatsFunc
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(version string, stats map[string]StatsFunc) *HealthHandler {
	if stats == nil {
		stats = map[string]StatsFunc{}
	}
	return &HealthHandler{
		version:   version,
		startedAt: time.Now(),
		stats:     stats,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	components := make(map[string]any, len(h.stats))
	for name, fn := range h.stats {
		components[name] = fn()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    h.version,
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"components": components,
	})
}
