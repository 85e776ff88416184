package handler

import (
	"net/http"

	"github.com/biuromax/backend/internal/service"
)

// HealthHandler serves the public health endpoint.
type HealthHandler struct {
	health service.HealthService
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(health service.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Health handles GET /api/health: 200 when every check passes, 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Report(r.Context())

	status := http.StatusOK
	if report.Status != service.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
