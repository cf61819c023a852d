package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
)

const (
	serviceName    = "brandkit-api"
	serviceVersion = "0.1.0"
)

// Pinger is a dependency that can be health checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db      Pinger
	redis   Pinger
	events  interface{ Connected() bool }
	breaker *completion.Breaker
}

// NewHealthHandler creates a new health handler. Any dependency may be nil.
func NewHealthHandler(db, redis Pinger, events interface{ Connected() bool }, breaker *completion.Breaker) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		events:  events,
		breaker: breaker,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Health returns basic health status
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// DeepHealth returns health status with dependency checks
// @Summary Dependency health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/deep [get]
func (h *HealthHandler) DeepHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deps := make(map[string]string)
	allHealthy := true

	check := func(name string, p Pinger) {
		if p == nil {
			deps[name] = "not configured"
			return
		}
		if err := p.Ping(ctx); err != nil {
			deps[name] = "unhealthy: " + err.Error()
			allHealthy = false
			return
		}
		deps[name] = "healthy"
	}
	check("database", h.db)
	check("redis", h.redis)

	// NATS is optional; a lost connection degrades eventing, not the API.
	switch {
	case h.events == nil:
		deps["nats"] = "not configured"
	case h.events.Connected():
		deps["nats"] = "healthy"
	default:
		deps["nats"] = "disconnected"
	}

	if h.breaker != nil {
		state := h.breaker.State()
		deps["completion_service"] = "circuit " + state.String()
		if state == completion.BreakerOpen {
			allHealthy = false
		}
	} else {
		deps["completion_service"] = "not configured"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:       status,
		Service:      serviceName,
		Version:      serviceVersion,
		Dependencies: deps,
	})
}
