package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aridelmo/argus/internal/waf"
)

// FilterHandler is the enforcement point: the reverse proxy submits each
// request here and acts on the returned action. An ERROR outcome maps to
// 502 so the gateway fails closed instead of letting traffic through.
type FilterHandler struct {
	pipeline *waf.Pipeline
}

// NewFilterHandler creates a FilterHandler.
func NewFilterHandler(pipeline *waf.Pipeline) *FilterHandler {
	return &FilterHandler{pipeline: pipeline}
}

// Filter runs one request through the pipeline.
func (h *FilterHandler) Filter(c *gin.Context) {
	var req waf.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome := h.pipeline.Run(c.Request.Context(), req)
	if outcome.Action == waf.ActionError {
		c.JSON(http.StatusBadGateway, gin.H{
			"action": string(outcome.Action),
			"error":  "filtering pipeline failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":    string(outcome.Action),
		"reason":    outcome.Record.Reason,
		"record_id": outcome.Record.UUID,
	})
}
