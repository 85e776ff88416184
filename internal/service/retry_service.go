package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/biuromax/backend/internal/mailer"
	"github.com/biuromax/backend/internal/model"
	"github.com/biuromax/backend/internal/repository"
)

// RetrySummary reports what one retry pass did.
type RetrySummary struct {
	Scanned int `json:"scanned"`
	Sent    int `json:"sent"`
	Retried int `json:"retried"`
	Failed  int `json:"failed"`
	Alerted int `json:"alerted"`
}

// RetryService drains the failed-email queue. It is invoked out-of-band
// (cron), never per-request, and it only mutates records the request path
// created.
type RetryService interface {
	ProcessPending(ctx context.Context) (RetrySummary, error)
}

type retryServiceImpl struct {
	failedEmails repository.FailedEmailRepository
	mail         mailer.Mailer
	adminEmail   string
	maxRetries   int
}

// NewRetryService creates the production RetryService.
func NewRetryService(failedEmails repository.FailedEmailRepository, mail mailer.Mailer, adminEmail string, maxRetries int) RetryService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &retryServiceImpl{
		failedEmails: failedEmails,
		mail:         mail,
		adminEmail:   adminEmail,
		maxRetries:   maxRetries,
	}
}

// ProcessPending scans the eligible records, re-attempts delivery and
// resolves each one. Records are claimed with a conditional update first, so
// overlapping passes skip each other's rows instead of double-sending. A
// claim left behind by a crashed or timed-out pass expires after a lease and
// the record re-enters the scan, so no record is ever stranded mid-claim.
// Zero eligible records is a no-op.
func (s *retryServiceImpl) ProcessPending(ctx context.Context) (RetrySummary, error) {
	var sum RetrySummary

	recs, err := s.failedEmails.ListPending(ctx)
	if err != nil {
		return sum, fmt.Errorf("list pending emails: %w", err)
	}
	sum.Scanned = len(recs)

	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		claimed, err := s.failedEmails.Claim(ctx, rec.ID)
		if err != nil {
			slog.Error("claim retry record failed", "id", rec.ID, "error", err)
			continue
		}
		if !claimed {
			// Another pass owns it.
			continue
		}

		subject, body := RenderEmail(rec.EmailType, rec.Payload)
		if _, err := s.mail.Send(ctx, rec.Payload.Recipient, subject, body); err != nil {
			s.resolveFailure(ctx, rec, err, &sum)
			continue
		}

		if err := s.failedEmails.MarkSent(ctx, rec.ID); err != nil {
			slog.Error("mark sent failed", "id", rec.ID, "error", err)
			continue
		}
		sum.Sent++
		slog.Info("retried email delivered", "id", rec.ID, "email_type", rec.EmailType, "retry_count", rec.RetryCount)
	}

	return sum, nil
}

// resolveFailure books one failed attempt and escalates to an admin alert
// when the retry ceiling is reached. The alert itself is best-effort: a
// failure there is logged, not escalated further.
func (s *retryServiceImpl) resolveFailure(ctx context.Context, rec *model.FailedEmailRecord, sendErr error, sum *RetrySummary) {
	retryCount, final, err := s.failedEmails.MarkFailedAttempt(ctx, rec.ID, sendErr.Error(), s.maxRetries)
	if err != nil {
		slog.Error("mark failed attempt failed", "id", rec.ID, "error", err)
		return
	}

	if !final {
		sum.Retried++
		slog.Warn("email retry failed, will retry",
			"id", rec.ID, "email_type", rec.EmailType, "retry_count", retryCount, "error", sendErr)
		return
	}

	sum.Failed++
	slog.Error("email retry ceiling reached",
		"id", rec.ID, "email_type", rec.EmailType, "retry_count", retryCount, "error", sendErr)

	if s.adminEmail == "" {
		return
	}
	subject := "[biuromax] Email delivery failing"
	body := fmt.Sprintf(
		"Persistent email delivery failure.\n\nRecord: %s\nType: %s\nRecipient: %s\nForm: %s\nRetries: %d\nLast error: %v\n",
		rec.ID, rec.EmailType, rec.Payload.Recipient, rec.Payload.FormType, retryCount, sendErr)
	if _, err := s.mail.Send(ctx, s.adminEmail, subject, body); err != nil {
		slog.Error("admin alert send failed", "id", rec.ID, "error", err)
		return
	}
	sum.Alerted++
}
