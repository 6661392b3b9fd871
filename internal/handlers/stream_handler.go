package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/metrics"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

const DefaultHeartbeat = 25 * time.Second

// StreamHandler pushes full collection snapshots over Server-Sent Events.
type StreamHandler struct {
	BaseHandler
	snapshotService services.SnapshotService
	subscriber      events.Subscriber
	metrics         *metrics.HTTPMetrics
	heartbeat       time.Duration
}

func NewStreamHandler(
	snapshotService services.SnapshotService,
	subscriber events.Subscriber,
	m *metrics.HTTPMetrics,
	heartbeat time.Duration,
	logger utils.Logger,
) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &StreamHandler{
		BaseHandler:     NewBaseHandler(logger),
		snapshotService: snapshotService,
		subscriber:      subscriber,
		metrics:         m,
		heartbeat:       heartbeat,
	}
}

// Stream sends a "snapshot" event now and after every change to the collection.
// @Summary Subscribe to a collection
// @Tags realtime
// @Produce text/event-stream
// @Param collection path string true "movies, schedule, classes, suggestions, users, attendance or grades"
// @Router /stream/{collection} [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	collection := c.Param("collection")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe first so no change between the initial read and the
	// subscription goes unnoticed.
	changes, err := h.subscriber.Subscribe(ctx, events.ChangeTopic(collection))
	if err != nil {
		h.Logger(c).Error("Failed to subscribe", "collection", collection, "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "change feed unavailable",
		})
		return
	}

	initial, err := h.snapshotService.Snapshot(ctx, actor, collection)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.StreamOpened()
		defer h.metrics.StreamClosed()
	}
	h.LogRequest(c, "Snapshot stream opened", "collection", collection)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("snapshot", initial)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false

		case _, open := <-changes:
			if !open {
				return false
			}
			drain(changes)

			data, err := h.snapshotService.Snapshot(ctx, actor, collection)
			if err != nil {
				h.Logger(c).Warn("Snapshot rebuild failed", "collection", collection, "error", err)
				c.SSEvent("error", gin.H{"message": err.Error()})
				return false
			}
			c.SSEvent("snapshot", data)
			return true

		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			return true
		}
	})

	h.LogRequest(c, "Snapshot stream closed", "collection", collection)
}

// drain discards queued changes; one rebuild covers all of them.
func drain(changes <-chan *events.Event) {
	for {
		select {
		case _, open := <-changes:
			if !open {
				return
			}
		default:
			return
		}
	}
}
