package repository

import (
	"context"
	"time"

	"github.com/biuromax/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestMetricRepository persists per-request timing samples from the form
// pipeline and aggregates them for the admin dashboard.
type RequestMetricRepository interface {
	Record(ctx context.Context, m *model.RequestMetric) error
	AggregateHourly(ctx context.Context, since time.Time) ([]model.HourlyMetric, error)
}

// PgRequestMetricRepository is the PostgreSQL implementation of RequestMetricRepository.
type PgRequestMetricRepository struct {
	pool *pgxpool.Pool
}

// NewPgRequestMetricRepository creates a PgRequestMetricRepository backed by the given pool.
func NewPgRequestMetricRepository(pool *pgxpool.Pool) *PgRequestMetricRepository {
	return &PgRequestMetricRepository{pool: pool}
}

var _ RequestMetricRepository = (*PgRequestMetricRepository)(nil)

// Record inserts one timing sample.
func (r *PgRequestMetricRepository) Record(ctx context.Context, m *model.RequestMetric) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO request_metrics (form_type, duration_ms, email_ms, is_error)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, recorded_at`,
		m.FormType, m.DurationMs, m.EmailMs, m.IsError,
	).Scan(&m.ID, &m.RecordedAt)
}

// AggregateHourly buckets samples by hour, newest bucket first.
func (r *PgRequestMetricRepository) AggregateHourly(ctx context.Context, since time.Time) ([]model.HourlyMetric, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc('hour', recorded_at) AS hour,
		        COUNT(*),
		        AVG(duration_ms),
		        MAX(duration_ms),
		        AVG(email_ms),
		        MAX(email_ms),
		        COUNT(*) FILTER (WHERE is_error)
		 FROM request_metrics
		 WHERE recorded_at >= $1
		 GROUP BY hour
		 ORDER BY hour DESC`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []model.HourlyMetric
	for rows.Next() {
		var b model.HourlyMetric
		if err := rows.Scan(&b.Hour, &b.Requests, &b.AvgDurationMs, &b.MaxDurationMs, &b.AvgEmailMs, &b.MaxEmailMs, &b.Errors); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
