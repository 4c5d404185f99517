package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aridelmo/argus/internal/waf"
)

// WhitelistHandler lists manually exempted request bodies.
type WhitelistHandler struct {
	whitelist *waf.WhitelistStore
}

// NewWhitelistHandler creates a WhitelistHandler.
func NewWhitelistHandler(whitelist *waf.WhitelistStore) *WhitelistHandler {
	return &WhitelistHandler{whitelist: whitelist}
}

// List returns all whitelist entries, newest first.
func (h *WhitelistHandler) List(c *gin.Context) {
	entries, err := h.whitelist.List()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
