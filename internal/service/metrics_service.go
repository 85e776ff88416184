package service

import (
	"context"
	"fmt"
	"time"

	"github.com/biuromax/backend/internal/model"
	"github.com/biuromax/backend/internal/repository"
)

// MetricsReport is the admin dashboard aggregate: hourly latency buckets,
// retry-queue stats, rate-limit stats and submission counts by status.
type MetricsReport struct {
	Hourly       []model.HourlyMetric   `json:"hourly"`
	FailedEmails model.FailedEmailStats `json:"failed_emails"`
	RateLimits   model.RateLimitStats   `json:"rate_limits"`
	Submissions  map[string]int         `json:"submissions_by_status"`
	GeneratedAt  time.Time              `json:"generated_at"`
}

// MetricsService aggregates stored pipeline data for GET /api/admin/metrics.
type MetricsService interface {
	Snapshot(ctx context.Context) (MetricsReport, error)
}

type metricsServiceImpl struct {
	reqMetrics   repository.RequestMetricRepository
	failedEmails repository.FailedEmailRepository
	rateLimits   repository.RateLimitRepository
	submissions  repository.SubmissionRepository
}

// NewMetricsService creates the production MetricsService.
func NewMetricsService(
	reqMetrics repository.RequestMetricRepository,
	failedEmails repository.FailedEmailRepository,
	rateLimits repository.RateLimitRepository,
	submissions repository.SubmissionRepository,
) MetricsService {
	return &metricsServiceImpl{
		reqMetrics:   reqMetrics,
		failedEmails: failedEmails,
		rateLimits:   rateLimits,
		submissions:  submissions,
	}
}

// Snapshot aggregates the last 24 hours of pipeline data.
func (s *metricsServiceImpl) Snapshot(ctx context.Context) (MetricsReport, error) {
	report := MetricsReport{GeneratedAt: time.Now().UTC()}
	since := report.GeneratedAt.Add(-24 * time.Hour)

	hourly, err := s.reqMetrics.AggregateHourly(ctx, since)
	if err != nil {
		return report, fmt.Errorf("aggregate request metrics: %w", err)
	}
	report.Hourly = hourly

	report.FailedEmails, err = s.failedEmails.Stats(ctx)
	if err != nil {
		return report, fmt.Errorf("failed email stats: %w", err)
	}

	report.RateLimits, err = s.rateLimits.Stats(ctx)
	if err != nil {
		return report, fmt.Errorf("rate limit stats: %w", err)
	}

	report.Submissions, err = s.submissions.CountByStatus(ctx)
	if err != nil {
		return report, fmt.Errorf("submission counts: %w", err)
	}

	return report, nil
}
