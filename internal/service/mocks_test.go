package service

import (
	"context"
	"time"

	"github.com/biuromax/backend/internal/model"
)

// Function-field mocks shared by the service tests. Unset fields return
// zero values so each test only wires the calls it cares about.

type mockSubmissionRepo struct {
	SaveFunc               func(ctx context.Context, sub *model.FormSubmission) error
	HasRecentDuplicateFunc func(ctx context.Context, formType model.FormType, email, ipHash string, since time.Time) (bool, error)
	ListFunc               func(ctx context.Context, opts model.SubmissionListOptions) ([]*model.FormSubmission, error)
	CountByStatusFunc      func(ctx context.Context) (map[string]int, error)

	saved []*model.FormSubmission
}

func (m *mockSubmissionRepo) Save(ctx context.Context, sub *model.FormSubmission) error {
	m.saved = append(m.saved, sub)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, sub)
	}
	return nil
}

func (m *mockSubmissionRepo) HasRecentDuplicate(ctx context.Context, formType model.FormType, email, ipHash string, since time.Time) (bool, error) {
	if m.HasRecentDuplicateFunc != nil {
		return m.HasRecentDuplicateFunc(ctx, formType, email, ipHash, since)
	}
	return false, nil
}

func (m *mockSubmissionRepo) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.FormSubmission, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx)
	}
	return map[string]int{}, nil
}

type mockRateLimitRepo struct {
	CheckFunc func(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error)
	StatsFunc func(ctx context.Context) (model.RateLimitStats, error)
}

func (m *mockRateLimitRepo) Check(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, identifier, limit, window)
	}
	return true, nil
}

func (m *mockRateLimitRepo) Stats(ctx context.Context) (model.RateLimitStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return model.RateLimitStats{}, nil
}

type mockFailedEmailRepo struct {
	CreateFunc            func(ctx context.Context, rec *model.FailedEmailRecord) error
	ListPendingFunc       func(ctx context.Context) ([]*model.FailedEmailRecord, error)
	ClaimFunc             func(ctx context.Context, id string) (bool, error)
	MarkSentFunc          func(ctx context.Context, id string) error
	MarkFailedAttemptFunc func(ctx context.Context, id string, lastErr string, maxRetries int) (int, bool, error)
	StatsFunc             func(ctx context.Context) (model.FailedEmailStats, error)

	created    []*model.FailedEmailRecord
	markedSent []string
}

func (m *mockFailedEmailRepo) Create(ctx context.Context, rec *model.FailedEmailRecord) error {
	m.created = append(m.created, rec)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return nil
}

func (m *mockFailedEmailRepo) ListPending(ctx context.Context) ([]*model.FailedEmailRecord, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	return nil, nil
}

func (m *mockFailedEmailRepo) Claim(ctx context.Context, id string) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, id)
	}
	return true, nil
}

func (m *mockFailedEmailRepo) MarkSent(ctx context.Context, id string) error {
	m.markedSent = append(m.markedSent, id)
	if m.MarkSentFunc != nil {
		return m.MarkSentFunc(ctx, id)
	}
	return nil
}

func (m *mockFailedEmailRepo) MarkFailedAttempt(ctx context.Context, id string, lastErr string, maxRetries int) (int, bool, error) {
	if m.MarkFailedAttemptFunc != nil {
		return m.MarkFailedAttemptFunc(ctx, id, lastErr, maxRetries)
	}
	return 1, false, nil
}

func (m *mockFailedEmailRepo) Stats(ctx context.Context) (model.FailedEmailStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return model.FailedEmailStats{}, nil
}

type mockRequestMetricRepo struct {
	RecordFunc          func(ctx context.Context, m *model.RequestMetric) error
	AggregateHourlyFunc func(ctx context.Context, since time.Time) ([]model.HourlyMetric, error)

	recorded []*model.RequestMetric
}

func (m *mockRequestMetricRepo) Record(ctx context.Context, rm *model.RequestMetric) error {
	m.recorded = append(m.recorded, rm)
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, rm)
	}
	return nil
}

func (m *mockRequestMetricRepo) AggregateHourly(ctx context.Context, since time.Time) ([]model.HourlyMetric, error) {
	if m.AggregateHourlyFunc != nil {
		return m.AggregateHourlyFunc(ctx, since)
	}
	return nil, nil
}

type mockAnalyticsRepo struct {
	SaveFunc       func(ctx context.Context, ev *model.AnalyticsEvent) error
	ListFunc       func(ctx context.Context, opts model.AnalyticsListOptions) ([]*model.AnalyticsEvent, error)
	CountSinceFunc func(ctx context.Context, since time.Time) (int, error)

	saved []*model.AnalyticsEvent
}

func (m *mockAnalyticsRepo) Save(ctx context.Context, ev *model.AnalyticsEvent) error {
	m.saved = append(m.saved, ev)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, ev)
	}
	return nil
}

func (m *mockAnalyticsRepo) List(ctx context.Context, opts model.AnalyticsListOptions) ([]*model.AnalyticsEvent, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockAnalyticsRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	if m.CountSinceFunc != nil {
		return m.CountSinceFunc(ctx, since)
	}
	return 0, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type mockMailer struct {
	SendFunc   func(ctx context.Context, to, subject, body string) (string, error)
	VerifyFunc func(ctx context.Context) (time.Duration, error)

	sent []sentMail
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	return "msg-id", nil
}

func (m *mockMailer) Verify(ctx context.Context) (time.Duration, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx)
	}
	return time.Millisecond, nil
}
