package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aridelmo/argus/internal/database"
	"github.com/aridelmo/argus/internal/version"
	"github.com/aridelmo/argus/internal/waf"
)

// Pinger checks reachability of the decision service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health: store and analyzer reachability plus
// the active enforcement mode.
type HealthHandler struct {
	db       *gorm.DB
	analyzer Pinger
	mode     *waf.ModeController
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db *gorm.DB, analyzer Pinger, mode *waf.ModeController) *HealthHandler {
	return &HealthHandler{db: db, analyzer: analyzer, mode: mode}
}

// Health responds with reachability of the service's collaborators.
func (h *HealthHandler) Health(c *gin.Context) {
	storesReachable := database.Ping(h.db) == nil
	analyzerReachable := h.analyzer.Ping(c.Request.Context()) == nil

	status := "healthy"
	if !storesReachable || !analyzerReachable {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             status,
		"service":            version.Name,
		"version":            version.Full(),
		"stores_reachable":   storesReachable,
		"analyzer_reachable": analyzerReachable,
		"mode":               string(h.mode.Current()),
	})
}
