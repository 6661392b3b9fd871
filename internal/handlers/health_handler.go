package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/services"
)

// HealthHandler reports the state of the database, Redis and the event bus.
type HealthHandler struct {
	serviceManager services.ServiceManager
	cache          *cache.CacheManager
	eventsBackend  string
}

func NewHealthHandler(serviceManager services.ServiceManager, cm *cache.CacheManager, eventsBackend string) *HealthHandler {
	return &HealthHandler{serviceManager: serviceManager, cache: cm, eventsBackend: eventsBackend}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"events": h.eventsBackend}

	if err := h.serviceManager.HealthCheck(ctx); err != nil {
		status = http.StatusServiceUnavailable
		checks["database"] = err.Error()
	} else {
		checks["database"] = "ok"
	}

	switch {
	case !h.cache.Available():
		checks["redis"] = "disabled"
	case h.cache.HealthCheck(ctx) != nil:
		// Redis only backs caches and sign-in links; the API still serves.
		checks["redis"] = "unreachable"
	default:
		checks["redis"] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"service":   "cinema-service",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
