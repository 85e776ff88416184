// Package metrics exposes process-level Prometheus counters for the form
// pipeline, alongside the database-backed aggregates served on the admin
// metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters. Use New to get a registered set.
type Metrics struct {
	SubmissionsTotal *prometheus.CounterVec
	EmailsTotal      *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter
	SubmissionSecs   *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates the counter set on its own registry so tests can build
// independent instances.
func New() *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forms_submissions_total",
				Help: "Form submissions by form type and outcome",
			},
			[]string{"form_type", "outcome"},
		),
		EmailsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forms_emails_total",
				Help: "Email dispatch attempts by email type and outcome",
			},
			[]string{"email_type", "outcome"},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "forms_rate_limited_total",
				Help: "Requests denied by the rate limiter",
			},
		),
		SubmissionSecs: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forms_submission_duration_seconds",
				Help:    "End-to-end form submission processing time",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"form_type"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.SubmissionsTotal, m.EmailsTotal, m.RateLimitedTotal, m.SubmissionSecs)
	return m
}

// Handler returns the Prometheus exposition endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
