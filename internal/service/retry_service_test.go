package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/biuromax/backend/internal/model"
)

func pendingRecord(id string) *model.FailedEmailRecord {
	return &model.FailedEmailRecord{
		ID:        id,
		EmailType: model.EmailConfirmation,
		Status:    model.EmailPending,
		Payload: model.EmailPayload{
			FormType:  model.FormVirtualOffice,
			Data:      map[string]string{"companyName": "Firma", "startDate": "2024-06-01", "package": "basic"},
			Language:  "en",
			Recipient: "jan@example.com",
		},
	}
}

func TestProcessPending_Empty(t *testing.T) {
	repo := &mockFailedEmailRepo{}
	mail := &mockMailer{}
	svc := NewRetryService(repo, mail, "admin@biuromax.pl", 3)

	sum, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != (RetrySummary{}) {
		t.Errorf("expected empty summary, got %+v", sum)
	}
	if len(mail.sent) != 0 {
		t.Errorf("no emails expected, got %d", len(mail.sent))
	}
}

func TestProcessPending_DeliversAndMarksSent(t *testing.T) {
	repo := &mockFailedEmailRepo{
		ListPendingFunc: func(ctx context.Context) ([]*model.FailedEmailRecord, error) {
			return []*model.FailedEmailRecord{pendingRecord("rec-1"), pendingRecord("rec-2")}, nil
		},
	}
	mail := &mockMailer{}
	svc := NewRetryService(repo, mail, "admin@biuromax.pl", 3)

	sum, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Scanned != 2 || sum.Sent != 2 || sum.Retried != 0 || sum.Failed != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if len(repo.markedSent) != 2 {
		t.Fatalf("expected 2 records marked sent, got %d", len(repo.markedSent))
	}
	if len(mail.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(mail.sent))
	}
	// Resends reuse the stored payload, not request state.
	if mail.sent[0].To != "jan@example.com" {
		t.Errorf("resend recipient %q", mail.sent[0].To)
	}
	if !strings.Contains(mail.sent[0].Body, "Company name: Firma") {
		t.Errorf("resend body not rendered from payload:\n%s", mail.sent[0].Body)
	}
}

func TestProcessPending_SkipsUnclaimed(t *testing.T) {
	repo := &mockFailedEmailRepo{
		ListPendingFunc: func(ctx context.Context) ([]*model.FailedEmailRecord, error) {
			return []*model.FailedEmailRecord{pendingRecord("rec-1"), pendingRecord("rec-2")}, nil
		},
		ClaimFunc: func(ctx context.Context, id string) (bool, error) {
			return id == "rec-2", nil
		},
	}
	mail := &mockMailer{}
	svc := NewRetryService(repo, mail, "admin@biuromax.pl", 3)

	sum, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Sent != 1 {
		t.Errorf("expected 1 sent, got %+v", sum)
	}
	if len(mail.sent) != 1 || len(repo.markedSent) != 1 || repo.markedSent[0] != "rec-2" {
		t.Errorf("only the claimed record should be processed: sent=%v marked=%v", mail.sent, repo.markedSent)
	}
}

func TestProcessPending_RedeliversStrandedClaim(t *testing.T) {
	// A record left in processing by a pass that died before resolving it
	// comes back through the eligible scan and must be claimed and sent
	// like any pending record.
	stranded := pendingRecord("rec-1")
	stranded.Status = model.EmailProcessing
	stranded.RetryCount = 1

	var claimedID string
	repo := &mockFailedEmailRepo{
		ListPendingFunc: func(ctx context.Context) ([]*model.FailedEmailRecord, error) {
			return []*model.FailedEmailRecord{stranded}, nil
		},
		ClaimFunc: func(ctx context.Context, id string) (bool, error) {
			claimedID = id
			return true, nil
		},
	}
	mail := &mockMailer{}
	svc := NewRetryService(repo, mail, "admin@biuromax.pl", 3)

	sum, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimedID != "rec-1" {
		t.Errorf("stranded record not reclaimed, claimed %q", claimedID)
	}
	if sum.Sent != 1 || len(repo.markedSent) != 1 {
		t.Errorf("stranded record not delivered: %+v, marked=%v", sum, repo.markedSent)
	}
}

func TestProcessPending_FailureBelowCeiling(t *testing.T) {
	var attempt struct {
		id      string
		lastErr string
		max     int
	}
	repo := &mockFailedEmailRepo{
		ListPendingFunc: func(ctx context.Context) ([]*model.FailedEmailRecord, error) {
			return []*model.FailedEmailRecord{pendingRecord("rec-1")}, nil
		},
		MarkFailedAttemptFunc: func(ctx context.Context, id string, lastErr string, maxRetries int) (int, bool, error) {
			attempt.id, attempt.lastErr, attempt.max = id, lastErr, maxRetries
			return 1, false, nil
		},
	}
	mail := &mockMailer{
		SendFunc: func(ctx context.Context, to, subject, body string) (string, error) {
			return "", errors.New("smtp timeout")
		},
	}
	svc := NewRetryService(repo, mail, "admin@biuromax.pl", 3)

	sum, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Retried != 1 || sum.Failed != 0 || sum.Alerted != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if attempt.id != "rec-1" || attempt.lastErr != "smtp timeout" || attempt.max != 3 {
		t.Errorf("unexpected failed attempt booking %+v", attempt)
	}
	if len(repo.markedSent) != 0 {
		t.Errorf("failed send must not be marked sent")
	}
	// Below the ceiling no alert goes out: the only send was the retry itself.
	if len(mail.sent) != 1 {
		t.Errorf("expected 1 send attempt, got %d", len(mail.sent))
	}
}

func TestProcessPending_CeilingAlertsAdmin(t *testing.T) {
	repo := &mockFailedEmailRepo{
		ListPendingFunc: func(ctx context.Context) ([]*model.FailedEmailRecord, error) {
			return []*model.FailedEmailRecord{pendingRecord("rec-1")}, nil
		},
		MarkFailedAttemptFunc: func(ctx context.Context, id string, lastErr string, maxRetries int) (int, bool, error) {
			return 3, true, nil
		},
	}
	mail := &mockMailer{
		SendFunc: func(ctx context.Context, to, subject, body string) (string, error) {
			if to == "jan@example.com" {
				return "", errors.New("mailbox unavailable")
			}
			return "alert-id", nil
		},
	}
	svc := NewRetryService(repo, mail, "admin@biuromax.pl", 3)

	sum, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Failed != 1 || sum.Alerted != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if len(mail.sent) != 2 {
		t.Fatalf("expected retry + alert, got %d sends", len(mail.sent))
	}
	alert := mail.sent[1]
	if alert.To != "admin@biuromax.pl" {
		t.Errorf("alert recipient %q", alert.To)
	}
	if alert.Subject != "[biuromax] Email delivery failing" {
		t.Errorf("alert subject %q", alert.Subject)
	}
	if !strings.Contains(alert.Body, "rec-1") || !strings.Contains(alert.Body, "mailbox unavailable") {
		t.Errorf("alert body missing record context:\n%s", alert.Body)
	}
}

func TestProcessPending_AlertFailureIsBestEffort(t *testing.T) {
	repo := &mockFailedEmailRepo{
		ListPendingFunc: func(ctx context.Context) ([]*model.FailedEmailRecord, error) {
			return []*model.FailedEmailRecord{pendingRecord("rec-1")}, nil
		},
		MarkFailedAttemptFunc: func(ctx context.Context, id string, lastErr string, maxRetries int) (int, bool, error) {
			return 3, true, nil
		},
	}
	mail := &mockMailer{
		SendFunc: func(ctx context.Context, to, subject, body string) (string, error) {
			return "", errors.New("smtp down")
		},
	}
	svc := NewRetryService(repo, mail, "admin@biuromax.pl", 3)

	sum, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("alert failure must not fail the pass: %v", err)
	}
	if sum.Failed != 1 || sum.Alerted != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestProcessPending_ListError(t *testing.T) {
	repo := &mockFailedEmailRepo{
		ListPendingFunc: func(ctx context.Context) ([]*model.FailedEmailRecord, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewRetryService(repo, &mockMailer{}, "admin@biuromax.pl", 3)

	if _, err := svc.ProcessPending(context.Background()); err == nil {
		t.Fatal("expected error when listing fails")
	}
}
