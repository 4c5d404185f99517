package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/aridelmo/argus/internal/audit"
)

// StreamHandler pushes newly appended audit records to connected observers
// over server-sent events. Delivery is at-most-once with no replay; clients
// that reconnect should re-fetch recent history from the records endpoint.
type StreamHandler struct {
	events *audit.Broadcaster
}

// NewStreamHandler creates a StreamHandler.
func NewStreamHandler(events *audit.Broadcaster) *StreamHandler {
	return &StreamHandler{events: events}
}

// Events streams audit records until the client disconnects.
func (h *StreamHandler) Events(c *gin.Context) {
	ch, cancel := h.events.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case rec, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("record", rec)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
