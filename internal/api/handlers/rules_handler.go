package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aridelmo/argus/internal/models"
	"github.com/aridelmo/argus/internal/waf"
)

// RulesHandler manages the fast-path pattern set.
type RulesHandler struct {
	rules *waf.RuleStore
}

// NewRulesHandler creates a RulesHandler.
func NewRulesHandler(rules *waf.RuleStore) *RulesHandler {
	return &RulesHandler{rules: rules}
}

// List returns all persisted rules.
func (h *RulesHandler) List(c *gin.Context) {
	rules, err := h.rules.List()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules, "count": len(rules)})
}

type createRuleRequest struct {
	Pattern string `json:"pattern" binding:"required"`
}

// Create inserts a manual rule.
func (h *RulesHandler) Create(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, created, err := h.rules.Add(req.Pattern, models.RuleOriginManual)
	if err != nil {
		if errors.Is(err, waf.ErrInvalidPattern) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, rule)
}

// Delete removes a rule by UUID.
func (h *RulesHandler) Delete(c *gin.Context) {
	if err := h.rules.Remove(c.Param("uuid")); err != nil {
		if errors.Is(err, waf.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rule deleted"})
}
