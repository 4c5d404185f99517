package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aridelmo/argus/internal/audit"
)

const maxRecentLimit = 1000

// RecordsHandler serves the audit log to operators.
type RecordsHandler struct {
	audit *audit.Service
}

// NewRecordsHandler creates a RecordsHandler.
func NewRecordsHandler(service *audit.Service) *RecordsHandler {
	return &RecordsHandler{audit: service}
}

// Recent returns the most recent records, newest first.
func (h *RecordsHandler) Recent(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	recs, err := h.audit.Recent(limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs, "count": len(recs)})
}

// Get returns a single record by UUID.
func (h *RecordsHandler) Get(c *gin.Context) {
	rec, err := h.audit.Get(c.Param("uuid"))
	if err != nil {
		if errors.Is(err, audit.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Stats returns aggregate counts for the dashboard.
func (h *RecordsHandler) Stats(c *gin.Context) {
	stats, err := h.audit.Stats()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Override whitelists a blocked record's body and flips its action to ALLOW.
func (h *RecordsHandler) Override(c *gin.Context) {
	rec, err := h.audit.Override(c.Param("uuid"))
	if err != nil {
		switch {
		case errors.Is(err, audit.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, audit.ErrNotBlocked), errors.Is(err, audit.ErrEmptyBody):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		}
		return
	}

	preview := rec.Body
	if len(preview) > 100 {
		preview = preview[:100]
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          "request added to whitelist",
		"record_id":        rec.UUID,
		"whitelisted_data": preview,
	})
}

// Delete removes a single record.
func (h *RecordsHandler) Delete(c *gin.Context) {
	if err := h.audit.Delete(c.Param("uuid")); err != nil {
		if errors.Is(err, audit.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "record deleted"})
}

// Purge removes every record.
func (h *RecordsHandler) Purge(c *gin.Context) {
	deleted, err := h.audit.Purge()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "records purged", "deleted_count": deleted})
}
