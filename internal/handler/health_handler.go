package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"eventshuffle/internal/service"
	"eventshuffle/pkg/logger"
)

const healthCheckTimeout = 3 * time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	store  service.HealthChecker
	cache  *service.CacheService
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store service.HealthChecker, cache *service.CacheService, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health. Only the store is critical; a cache outage is reported but
// the service keeps answering from the database.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   logger.ServiceName,
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	if err := h.store.HealthCheck(ctx); err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		response.Status = "unhealthy"
		response.Checks["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		response.Checks["database"] = "up"
	}

	switch err := h.cache.HealthCheck(ctx); {
	case err == nil:
		response.Checks["cache"] = "up"
	case errors.Is(err, service.ErrCacheDisabled):
		response.Checks["cache"] = "disabled"
	default:
		response.Checks["cache"] = "degraded"
	}

	respondJSON(w, status, response)
}
