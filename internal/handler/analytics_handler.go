package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/biuromax/backend/internal/form"
	"github.com/biuromax/backend/internal/model"
	"github.com/biuromax/backend/internal/service"
	"github.com/biuromax/backend/pkg/auth"
)

// AnalyticsHandler handles the privacy-gated analytics pipeline: event
// ingestion and admin-style read/export. Every route requires the analytics
// credentials (bearer or basic).
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	creds     auth.Credentials
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(analytics service.AnalyticsService, creds auth.Credentials) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, creds: creds}
}

// Track handles POST /api/analytics/track.
func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	if !h.creds.Configured() || !h.creds.Authorize(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in service.TrackInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	err := h.analytics.Track(r.Context(), in, clientIP(r))
	if err != nil {
		var verr *form.ValidationError
		switch {
		case errors.Is(err, service.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate_limited")
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid_event",
				"fields": verr.Fields,
			})
		default:
			writeError(w, http.StatusInternalServerError, "track_failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// timeRanges maps the accepted timeRange query values to durations.
var timeRanges = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// Export handles GET /api/analytics/track and GET /api/analytics/export.
// Query params: format=json|csv, timeRange=24h|7d|30d|90d, formType.
// Identifying fields are stripped by the service before anything leaves.
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !h.creds.Configured() || !h.creds.Authorize(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()

	rangeKey := q.Get("timeRange")
	if rangeKey == "" {
		rangeKey = "24h"
	}
	window, ok := timeRanges[rangeKey]
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_time_range")
		return
	}

	if ft := q.Get("formType"); ft != "" && !model.ValidFormType(ft) {
		writeError(w, http.StatusBadRequest, "invalid_form_type")
		return
	}

	events, err := h.analytics.Export(r.Context(), model.AnalyticsListOptions{
		Since:    time.Now().UTC().Add(-window),
		FormType: q.Get("formType"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed")
		return
	}

	if q.Get("format") == "csv" {
		writeCSV(w, events)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func writeCSV(w http.ResponseWriter, events []*model.AnalyticsEvent) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="analytics.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "form_type", "event_type", "field_name", "error_message", "session_id", "language", "form_version", "timestamp"})
	for _, ev := range events {
		_ = cw.Write([]string{
			ev.ID,
			ev.FormType,
			ev.EventType,
			ev.FieldName,
			ev.ErrorMessage,
			ev.SessionID,
			ev.Language,
			ev.FormVersion,
			ev.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
}
