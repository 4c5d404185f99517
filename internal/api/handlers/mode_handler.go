package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aridelmo/argus/internal/waf"
)

// ModeHandler exposes the enforcement mode to operators.
type ModeHandler struct {
	mode *waf.ModeController
}

// NewModeHandler creates a ModeHandler.
func NewModeHandler(mode *waf.ModeController) *ModeHandler {
	return &ModeHandler{mode: mode}
}

// Get returns the current mode and its version.
func (h *ModeHandler) Get(c *gin.Context) {
	mode, version := h.mode.Snapshot()
	c.JSON(http.StatusOK, gin.H{"mode": string(mode), "version": version})
}

type setModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// Set switches the enforcement mode.
func (h *ModeHandler) Set(c *gin.Context) {
	var req setModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode, err := h.mode.Set(req.Mode)
	if err != nil {
		if errors.Is(err, waf.ErrInvalidMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mode": string(mode)})
}
