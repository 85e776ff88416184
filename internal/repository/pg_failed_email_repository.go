package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/biuromax/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FailedEmailRepository is the durable retry queue for emails whose delivery
// failed during the request flow. Records are created only by the request
// path; the retry worker claims and resolves them.
type FailedEmailRepository interface {
	Create(ctx context.Context, rec *model.FailedEmailRecord) error
	// ListPending returns the records eligible for a retry pass: pending
	// rows plus processing rows whose claim lease has expired (worker
	// crashed or timed out between claim and resolve).
	ListPending(ctx context.Context) ([]*model.FailedEmailRecord, error)
	// Claim moves a record from pending (or expired-lease processing) to
	// processing. It reports false when another worker pass holds a live
	// claim on the record.
	Claim(ctx context.Context, id string) (bool, error)
	MarkSent(ctx context.Context, id string) error
	// MarkFailedAttempt increments retry_count and returns the new count.
	// The record goes back to pending unless the new count has reached
	// maxRetries, in which case it becomes failed (terminal).
	MarkFailedAttempt(ctx context.Context, id string, lastErr string, maxRetries int) (retryCount int, final bool, err error)
	Stats(ctx context.Context) (model.FailedEmailStats, error)
}

// PgFailedEmailRepository is the PostgreSQL implementation of FailedEmailRepository.
type PgFailedEmailRepository struct {
	pool *pgxpool.Pool
}

// NewPgFailedEmailRepository creates a PgFailedEmailRepository backed by the given pool.
func NewPgFailedEmailRepository(pool *pgxpool.Pool) *PgFailedEmailRepository {
	return &PgFailedEmailRepository{pool: pool}
}

var _ FailedEmailRepository = (*PgFailedEmailRepository)(nil)

// claimLease bounds how long a processing claim stays exclusive. It must
// exceed the retry worker's run deadline (5 minutes), so only a claim whose
// worker is certainly gone is ever reclaimed.
const claimLease = "10 minutes"

// Create inserts a new pending retry record and populates rec.ID and
// timestamps from the RETURNING clause.
func (r *PgFailedEmailRepository) Create(ctx context.Context, rec *model.FailedEmailRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO failed_emails (email_type, payload, status, retry_count, last_error)
		 VALUES ($1, $2, 'pending', 0, $3)
		 RETURNING id, status, retry_count, created_at, updated_at`,
		rec.EmailType, payload, rec.LastError,
	).Scan(&rec.ID, &rec.Status, &rec.RetryCount, &rec.CreatedAt, &rec.UpdatedAt)
}

// ListPending returns the eligible records, oldest first. A processing row
// past the claim lease is a stranded claim from a crashed or timed-out
// worker; it re-enters the scan so the email is still delivered eventually.
func (r *PgFailedEmailRepository) ListPending(ctx context.Context) ([]*model.FailedEmailRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email_type, payload, status, retry_count, COALESCE(last_error, ''), created_at, updated_at
		 FROM failed_emails
		 WHERE status = 'pending'
		    OR (status = 'processing' AND updated_at < NOW() - INTERVAL '`+claimLease+`')
		 ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*model.FailedEmailRecord
	for rows.Next() {
		var rec model.FailedEmailRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.EmailType, &payload, &rec.Status, &rec.RetryCount, &rec.LastError, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// Claim is a conditional update so overlapping worker passes cannot pick up
// the same record: only the pass whose UPDATE affects a row owns it. An
// expired-lease processing row is claimable again, matching ListPending.
func (r *PgFailedEmailRepository) Claim(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE failed_emails
		 SET status = 'processing', updated_at = NOW()
		 WHERE id = $1
		   AND (status = 'pending'
		     OR (status = 'processing' AND updated_at < NOW() - INTERVAL '`+claimLease+`'))`,
		id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkSent resolves a record as delivered. Sent is terminal; the record is
// excluded from every future scan.
func (r *PgFailedEmailRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE failed_emails
		 SET status = 'sent', last_error = NULL, updated_at = NOW()
		 WHERE id = $1`,
		id)
	return err
}

// MarkFailedAttempt records one failed delivery attempt in a single statement.
func (r *PgFailedEmailRepository) MarkFailedAttempt(ctx context.Context, id string, lastErr string, maxRetries int) (int, bool, error) {
	var retryCount int
	var status string
	err := r.pool.QueryRow(ctx,
		`UPDATE failed_emails
		 SET retry_count = retry_count + 1,
		     last_error = $2,
		     status = CASE WHEN retry_count + 1 >= $3 THEN 'failed' ELSE 'pending' END,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING retry_count, status`,
		id, lastErr, maxRetries,
	).Scan(&retryCount, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, err
	}
	return retryCount, status == model.EmailFailed, nil
}

// Stats returns queue counts per status and the highest retry count seen.
func (r *PgFailedEmailRepository) Stats(ctx context.Context) (model.FailedEmailStats, error) {
	var stats model.FailedEmailStats
	err := r.pool.QueryRow(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE status = 'pending'),
		   COUNT(*) FILTER (WHERE status = 'sent'),
		   COUNT(*) FILTER (WHERE status = 'failed'),
		   COALESCE(MAX(retry_count), 0)
		 FROM failed_emails`,
	).Scan(&stats.Pending, &stats.Sent, &stats.Failed, &stats.MaxRetryCount)
	return stats, err
}
