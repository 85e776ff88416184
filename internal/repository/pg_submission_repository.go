package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/biuromax/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionRepository defines the persistence interface for form submissions.
// It is defined here (in repository) to avoid an import cycle with service.
type SubmissionRepository interface {
	Save(ctx context.Context, sub *model.FormSubmission) error
	// HasRecentDuplicate reports whether a non-cancelled submission with the
	// same (formType, email, ipHash) fingerprint exists at or after since.
	HasRecentDuplicate(ctx context.Context, formType model.FormType, email, ipHash string, since time.Time) (bool, error)
	List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.FormSubmission, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// PgSubmissionRepository is the PostgreSQL implementation of SubmissionRepository.
type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionRepository creates a PgSubmissionRepository backed by the given pool.
func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

// Ensure PgSubmissionRepository implements SubmissionRepository at compile time.
var _ SubmissionRepository = (*PgSubmissionRepository)(nil)

// Save inserts a new form_submissions row and populates sub.ID and timestamps
// from the database RETURNING clause.
func (r *PgSubmissionRepository) Save(ctx context.Context, sub *model.FormSubmission) error {
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO form_submissions (form_type, data, status, ip_hash, session_id, language)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		 RETURNING id, submitted_at, updated_at`,
		sub.FormType, data, sub.Status, sub.IPHash, sub.SessionID, sub.Language,
	).Scan(&sub.ID, &sub.SubmittedAt, &sub.UpdatedAt)
}

// HasRecentDuplicate checks the duplicate fingerprint: same form, same email
// field, same IP hash, submitted at or after since, not cancelled.
func (r *PgSubmissionRepository) HasRecentDuplicate(ctx context.Context, formType model.FormType, email, ipHash string, since time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM form_submissions
		   WHERE form_type = $1
		     AND data->>'email' = $2
		     AND ip_hash = $3
		     AND submitted_at >= $4
		     AND status <> 'cancelled')`,
		formType, email, ipHash, since,
	).Scan(&exists)
	return exists, err
}

// List returns submissions filtered by form type and status, newest first.
func (r *PgSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.FormSubmission, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	formType := opts.FormType
	status := opts.Status
	if status == "all" {
		status = ""
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, form_type, data, status, ip_hash, COALESCE(session_id, ''), language, submitted_at, updated_at
		 FROM form_submissions
		 WHERE ($1 = '' OR form_type = $1)
		   AND ($2 = '' OR status = $2)
		 ORDER BY submitted_at DESC
		 LIMIT $3 OFFSET $4`,
		formType, status, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.FormSubmission
	for rows.Next() {
		var s model.FormSubmission
		var data []byte
		if err := rows.Scan(&s.ID, &s.FormType, &data, &s.Status, &s.IPHash, &s.SessionID, &s.Language, &s.SubmittedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &s.Data); err != nil {
			return nil, err
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

// CountByStatus returns the number of submissions per status.
func (r *PgSubmissionRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM form_submissions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
