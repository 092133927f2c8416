package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/page"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
	"github.com/gin-gonic/gin"
)

// EventSource is the bus the page stream listens on.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan *events.SessionEvent, error)
}

// EventsHandler streams session events and page snapshots as Server-Sent Events.
type EventsHandler struct {
	BaseHandler
	source EventSource
	page   *page.Page
}

const stateEvent = "state"

func NewEventsHandler(source EventSource, p *page.Page, logger utils.Logger) *EventsHandler {
	return &EventsHandler{
		BaseHandler: NewBaseHandler(logger),
		source:      source,
		page:        p,
	}
}

// Stream sends the current page first, then every session event and a fresh
// "state" event after each page change.
func (h *EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	stream, err := h.source.Subscribe(ctx)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to subscribe to session events", err)
		return
	}

	h.LogRequest(c, "Event stream opened")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	changed := h.page.Changed()
	c.SSEvent(stateEvent, h.page.Snapshot())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event)
			return true
		case <-changed:
			changed = h.page.Changed()
			c.SSEvent(stateEvent, h.page.Snapshot())
			return true
		}
	})

	h.LogRequest(c, "Event stream closed")
}
