package repository

import (
	"context"
	"errors"
	"time"

	"github.com/biuromax/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RateLimitRepository is the persisted fixed-window rate limiter. Counters
// live in the database so the limit is enforced across all server processes,
// not per-process.
type RateLimitRepository interface {
	// Check applies the fixed-window discipline for identifier and reports
	// whether the request is allowed. A denied request is recorded as a
	// duplicate attempt. Any storage error is a hard failure; callers must
	// not treat it as an allow.
	Check(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error)
	Stats(ctx context.Context) (model.RateLimitStats, error)
}

// PgRateLimitRepository is the PostgreSQL implementation of RateLimitRepository.
type PgRateLimitRepository struct {
	pool *pgxpool.Pool
}

// NewPgRateLimitRepository creates a PgRateLimitRepository backed by the given pool.
func NewPgRateLimitRepository(pool *pgxpool.Pool) *PgRateLimitRepository {
	return &PgRateLimitRepository{pool: pool}
}

var _ RateLimitRepository = (*PgRateLimitRepository)(nil)

// Check runs two single-statement steps so concurrent requests for the same
// identifier cannot both slip under the limit:
//
//  1. Start a fresh window (count=1) if no row exists or the current window
//     has expired. The conditional upsert returns a row only when it wins.
//  2. Otherwise increment inside the window, guarded by count < limit. Zero
//     affected rows means the limit is reached: record a duplicate attempt
//     and deny.
func (r *PgRateLimitRepository) Check(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	resetTime := time.Now().UTC().Add(window)

	var claimed string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO rate_limits (identifier, count, reset_time)
		 VALUES ($1, 1, $2)
		 ON CONFLICT (identifier) DO UPDATE
		 SET count = 1, reset_time = $2
		 WHERE rate_limits.reset_time <= NOW()
		 RETURNING identifier`,
		identifier, resetTime,
	).Scan(&claimed)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE rate_limits
		 SET count = count + 1
		 WHERE identifier = $1 AND count < $2 AND reset_time > NOW()`,
		identifier, limit)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := r.pool.Exec(ctx,
		`INSERT INTO duplicate_attempts (identifier) VALUES ($1)`,
		identifier); err != nil {
		return false, err
	}
	return false, nil
}

// Stats returns the active-window count and the duplicate attempts logged in
// the last 24 hours.
func (r *PgRateLimitRepository) Stats(ctx context.Context) (model.RateLimitStats, error) {
	var stats model.RateLimitStats
	err := r.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM rate_limits WHERE reset_time > NOW()),
		   (SELECT COUNT(*) FROM duplicate_attempts WHERE created_at >= NOW() - INTERVAL '24 hours')`,
	).Scan(&stats.ActiveWindows, &stats.DuplicateAttempts)
	return stats, err
}
