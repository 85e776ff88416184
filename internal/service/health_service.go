package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/biuromax/backend/internal/form"
	"github.com/biuromax/backend/internal/model"
	"github.com/biuromax/backend/internal/repository"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck is the result of one probe.
type HealthCheck struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// HealthReport aggregates all probes; Status is unhealthy if any check is.
type HealthReport struct {
	Status    string        `json:"status"`
	Checks    []HealthCheck `json:"checks"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Pinger is the database connectivity probe (satisfied by pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Verifier is the mail transport connectivity probe.
type Verifier interface {
	Verify(ctx context.Context) (time.Duration, error)
}

// HealthService runs the operational probes behind GET /api/health.
type HealthService interface {
	Report(ctx context.Context) HealthReport
}

type healthServiceImpl struct {
	db        Pinger
	mail      Verifier
	analytics repository.AnalyticsRepository
}

// NewHealthService creates the production HealthService.
func NewHealthService(db Pinger, mail Verifier, analytics repository.AnalyticsRepository) HealthService {
	return &healthServiceImpl{db: db, mail: mail, analytics: analytics}
}

// memoryLimitBytes is the heap threshold above which the memory check
// reports unhealthy. The site runs on small instances.
const memoryLimitBytes = 512 << 20

func (s *healthServiceImpl) Report(ctx context.Context) HealthReport {
	report := HealthReport{Status: StatusHealthy, CheckedAt: time.Now().UTC()}

	checks := []func(context.Context) HealthCheck{
		s.checkDatabase,
		s.checkEmail,
		s.checkFilesystem,
		s.checkMemory,
		s.checkForms,
		s.checkAnalytics,
	}
	for _, check := range checks {
		c := check(ctx)
		if c.Status != StatusHealthy {
			report.Status = StatusUnhealthy
		}
		report.Checks = append(report.Checks, c)
	}
	return report
}

func (s *healthServiceImpl) checkDatabase(ctx context.Context) HealthCheck {
	start := time.Now()
	if err := s.db.Ping(ctx); err != nil {
		return unhealthy("database", start, err.Error())
	}
	return healthy("database", start, "")
}

func (s *healthServiceImpl) checkEmail(ctx context.Context) HealthCheck {
	start := time.Now()
	if _, err := s.mail.Verify(ctx); err != nil {
		return unhealthy("email", start, err.Error())
	}
	return healthy("email", start, "")
}

// checkFilesystem writes and removes a probe file in the temp directory.
func (s *healthServiceImpl) checkFilesystem(_ context.Context) HealthCheck {
	start := time.Now()
	path := filepath.Join(os.TempDir(), fmt.Sprintf("healthcheck-%d", os.Getpid()))
	if err := os.WriteFile(path, []byte("ok"), 0o600); err != nil {
		return unhealthy("filesystem", start, err.Error())
	}
	if err := os.Remove(path); err != nil {
		return unhealthy("filesystem", start, err.Error())
	}
	return healthy("filesystem", start, "")
}

func (s *healthServiceImpl) checkMemory(_ context.Context) HealthCheck {
	start := time.Now()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	detail := fmt.Sprintf("heap_alloc_mb=%d", ms.HeapAlloc>>20)
	if ms.HeapAlloc > memoryLimitBytes {
		return unhealthy("memory", start, detail)
	}
	return healthy("memory", start, detail)
}

// checkForms verifies every advertised form endpoint has a schema wired, so
// a route/schema mismatch surfaces in health instead of as 500s.
func (s *healthServiceImpl) checkForms(_ context.Context) HealthCheck {
	start := time.Now()
	for _, ft := range model.KnownFormTypes {
		if form.Schema(ft) == nil {
			return unhealthy("forms", start, fmt.Sprintf("no schema for %s", ft))
		}
	}
	return healthy("forms", start, fmt.Sprintf("%d endpoints", len(model.KnownFormTypes)))
}

func (s *healthServiceImpl) checkAnalytics(ctx context.Context) HealthCheck {
	start := time.Now()
	n, err := s.analytics.CountSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return unhealthy("analytics", start, err.Error())
	}
	return healthy("analytics", start, fmt.Sprintf("events_24h=%d", n))
}

func healthy(name string, start time.Time, detail string) HealthCheck {
	return HealthCheck{Name: name, Status: StatusHealthy, Detail: detail, LatencyMs: time.Since(start).Milliseconds()}
}

func unhealthy(name string, start time.Time, detail string) HealthCheck {
	return HealthCheck{Name: name, Status: StatusUnhealthy, Detail: detail, LatencyMs: time.Since(start).Milliseconds()}
}
