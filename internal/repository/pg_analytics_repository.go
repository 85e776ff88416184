package repository

import (
	"context"
	"time"

	"github.com/biuromax/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsRepository persists sanitized form-interaction events.
type AnalyticsRepository interface {
	Save(ctx context.Context, ev *model.AnalyticsEvent) error
	List(ctx context.Context, opts model.AnalyticsListOptions) ([]*model.AnalyticsEvent, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// PgAnalyticsRepository is the PostgreSQL implementation of AnalyticsRepository.
type PgAnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewPgAnalyticsRepository creates a PgAnalyticsRepository backed by the given pool.
func NewPgAnalyticsRepository(pool *pgxpool.Pool) *PgAnalyticsRepository {
	return &PgAnalyticsRepository{pool: pool}
}

var _ AnalyticsRepository = (*PgAnalyticsRepository)(nil)

// Save inserts an analytics_events row. The event must already be sanitized
// (ip hashed, user agent truncated, session id filtered); this layer never
// sees raw identifying data.
func (r *PgAnalyticsRepository) Save(ctx context.Context, ev *model.AnalyticsEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO analytics_events
		   (form_type, event_type, field_name, error_message, session_id, ip_hash, user_agent, language, form_version, event_ts)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)
		 RETURNING id, created_at`,
		ev.FormType, ev.EventType, ev.FieldName, ev.ErrorMessage, ev.SessionID,
		ev.IPHash, ev.UserAgent, ev.Language, ev.FormVersion, ev.Timestamp,
	).Scan(&ev.ID, &ev.CreatedAt)
}

// List returns events newest first, bounded by opts.Since and filtered by
// form type when given.
func (r *PgAnalyticsRepository) List(ctx context.Context, opts model.AnalyticsListOptions) ([]*model.AnalyticsEvent, error) {
	if opts.Limit <= 0 {
		opts.Limit = 1000
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, form_type, event_type, COALESCE(field_name, ''), COALESCE(error_message, ''),
		        session_id, ip_hash, COALESCE(user_agent, ''), COALESCE(language, ''),
		        COALESCE(form_version, ''), event_ts, created_at
		 FROM analytics_events
		 WHERE ($1::timestamptz IS NULL OR event_ts >= $1)
		   AND ($2 = '' OR form_type = $2)
		 ORDER BY event_ts DESC
		 LIMIT $3`,
		nullableTime(opts.Since), opts.FormType, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*model.AnalyticsEvent
	for rows.Next() {
		var ev model.AnalyticsEvent
		if err := rows.Scan(&ev.ID, &ev.FormType, &ev.EventType, &ev.FieldName, &ev.ErrorMessage,
			&ev.SessionID, &ev.IPHash, &ev.UserAgent, &ev.Language,
			&ev.FormVersion, &ev.Timestamp, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// CountSince returns the number of events recorded at or after since.
func (r *PgAnalyticsRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analytics_events WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}

// nullableTime maps the zero time to SQL NULL for optional bounds.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
