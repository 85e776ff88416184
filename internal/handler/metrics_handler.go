package handler

import (
	"net/http"

	"github.com/biuromax/backend/internal/service"
)

// MetricsHandler serves the admin metrics aggregate. Auth is enforced by the
// admin gate middleware.
type MetricsHandler struct {
	metrics service.MetricsService
}

// NewMetricsHandler creates a MetricsHandler.
func NewMetricsHandler(metrics service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Metrics handles GET /api/admin/metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	report, err := h.metrics.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "metrics_failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
