package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hadirku/hadirku-api/internal/events"
	"github.com/hadirku/hadirku-api/internal/service"
)

const keepaliveInterval = 25 * time.Second

// EventsHandler streams hub events to clients over SSE. Delivery is
// best-effort; a client that reconnects after a gap reconciles by
// refetching the session window, not by replaying missed events.
type EventsHandler struct {
	hub     *events.Hub
	metrics *service.MetricsService
}

// NewEventsHandler builds a new handler.
func NewEventsHandler(hub *events.Hub, metrics *service.MetricsService) *EventsHandler {
	return &EventsHandler{hub: hub, metrics: metrics}
}

// Stream godoc
// @Summary Subscribe to real-time session and attendance events
// @Tags Events
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	ch, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	if h.metrics != nil {
		h.metrics.SubscriberConnected()
		defer h.metrics.SubscriberDisconnected()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientGone := c.Request.Context().Done()
	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(evt.Name, evt)
			return true
		case <-keepalive.C:
			c.SSEvent("ping", time.Now().UTC().UnixMilli())
			return true
		}
	})
}
