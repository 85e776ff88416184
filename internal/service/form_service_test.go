package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/biuromax/backend/internal/i18n"
	"github.com/biuromax/backend/internal/model"
)

func validVirtualOfficeData() map[string]string {
	return map[string]string{
		"firstName":    "Jan",
		"lastName":     "Kowalski",
		"email":        "jan@example.com",
		"phone":        "+48123456789",
		"gdprConsent":  "true",
		"companyName":  "Firma Sp. z o.o.",
		"businessType": "sole-proprietorship",
		"startDate":    "2024-06-01",
		"package":      "basic",
	}
}

type formFixture struct {
	submissions  *mockSubmissionRepo
	rateLimits   *mockRateLimitRepo
	failedEmails *mockFailedEmailRepo
	reqMetrics   *mockRequestMetricRepo
	mail         *mockMailer
	svc          FormService
}

func newFormFixture() *formFixture {
	f := &formFixture{
		submissions:  &mockSubmissionRepo{},
		rateLimits:   &mockRateLimitRepo{},
		failedEmails: &mockFailedEmailRepo{},
		reqMetrics:   &mockRequestMetricRepo{},
		mail:         &mockMailer{},
	}
	f.svc = NewFormService(f.submissions, f.rateLimits, f.failedEmails, f.reqMetrics, f.mail, nil, FormConfig{
		IPSalt:     "test-salt",
		AdminEmail: "admin@biuromax.pl",
	})
	return f
}

func TestSubmit_Success(t *testing.T) {
	f := newFormFixture()

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormVirtualOffice,
		Data:     validVirtualOfficeData(),
		IP:       "127.0.0.1",
		Language: i18n.English,
	})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Message != i18n.Message(i18n.English, i18n.MsgSubmitted) {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(f.submissions.saved) != 1 {
		t.Fatalf("expected 1 saved submission, got %d", len(f.submissions.saved))
	}
	sub := f.submissions.saved[0]
	if sub.Status != model.SubmissionPending {
		t.Errorf("expected pending status, got %q", sub.Status)
	}
	if sub.IPHash == "" || len(sub.IPHash) != 16 {
		t.Errorf("expected 16-char IP hash, got %q", sub.IPHash)
	}
	// Confirmation to the submitter plus a notification to the admin.
	if len(f.mail.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(f.mail.sent))
	}
	if f.mail.sent[0].To != "jan@example.com" {
		t.Errorf("confirmation sent to %q", f.mail.sent[0].To)
	}
	if f.mail.sent[1].To != "admin@biuromax.pl" {
		t.Errorf("admin notification sent to %q", f.mail.sent[1].To)
	}
	if len(f.failedEmails.created) != 0 {
		t.Errorf("no retry records expected, got %d", len(f.failedEmails.created))
	}
	if len(f.reqMetrics.recorded) != 1 {
		t.Errorf("expected 1 request metric, got %d", len(f.reqMetrics.recorded))
	}
}

func TestSubmit_ValidationFailure(t *testing.T) {
	f := newFormFixture()

	data := validVirtualOfficeData()
	delete(data, "email")
	data["phone"] = "not a phone"

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormVirtualOffice,
		Data:     data,
		IP:       "127.0.0.1",
		Language: i18n.Polish,
	})

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", res.Status)
	}
	if res.Message != i18n.Message(i18n.Polish, i18n.MsgInvalid) {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(res.Errors) < 2 {
		t.Errorf("expected field errors for email and phone, got %+v", res.Errors)
	}
	if len(f.submissions.saved) != 0 {
		t.Errorf("invalid submission must not be persisted")
	}
	if len(f.mail.sent) != 0 {
		t.Errorf("invalid submission must not send email")
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	f := newFormFixture()
	f.rateLimits.CheckFunc = func(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
		return false, nil
	}

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormContact,
		Data: map[string]string{
			"firstName": "Jan", "lastName": "Kowalski",
			"email": "jan@example.com", "phone": "+48123456789",
			"gdprConsent": "true", "subject": "hi", "message": "hello",
		},
		IP:       "10.0.0.1",
		Language: i18n.English,
	})

	if res.Success || res.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 failure, got %+v", res)
	}
	if res.Message != i18n.Message(i18n.English, i18n.MsgRateLimited) {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(f.submissions.saved) != 0 {
		t.Errorf("rate-limited submission must not be persisted")
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	f := newFormFixture()
	f.submissions.HasRecentDuplicateFunc = func(ctx context.Context, formType model.FormType, email, ipHash string, since time.Time) (bool, error) {
		if email != "jan@example.com" {
			t.Errorf("duplicate check got email %q", email)
		}
		return true, nil
	}

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormVirtualOffice,
		Data:     validVirtualOfficeData(),
		IP:       "127.0.0.1",
		Language: i18n.English,
	})

	if res.Success || res.Status != http.StatusConflict {
		t.Fatalf("expected 409 failure, got %+v", res)
	}
	if res.Message != i18n.Message(i18n.English, i18n.MsgDuplicate) {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(f.submissions.saved) != 0 {
		t.Errorf("duplicate must not be persisted")
	}
}

func TestSubmit_StorageError(t *testing.T) {
	f := newFormFixture()
	f.submissions.SaveFunc = func(ctx context.Context, sub *model.FormSubmission) error {
		return errors.New("connection refused")
	}

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormVirtualOffice,
		Data:     validVirtualOfficeData(),
		IP:       "127.0.0.1",
		Language: i18n.Polish,
	})

	if res.Success || res.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 failure, got %+v", res)
	}
	if res.Message != i18n.Message(i18n.Polish, i18n.MsgServerError) {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(f.mail.sent) != 0 {
		t.Errorf("failed save must not send email")
	}
}

func TestSubmit_EmailFailureStillSucceeds(t *testing.T) {
	f := newFormFixture()
	f.mail.SendFunc = func(ctx context.Context, to, subject, body string) (string, error) {
		if to == "jan@example.com" {
			return "", errors.New("smtp: connection reset")
		}
		return "msg-id", nil
	}

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormVirtualOffice,
		Data:     validVirtualOfficeData(),
		IP:       "127.0.0.1",
		Language: i18n.English,
	})

	if !res.Success {
		t.Fatalf("email failure must not fail the submission, got %+v", res)
	}
	if len(f.submissions.saved) != 1 {
		t.Fatalf("expected submission persisted, got %d", len(f.submissions.saved))
	}
	if len(f.failedEmails.created) != 1 {
		t.Fatalf("expected exactly 1 retry record, got %d", len(f.failedEmails.created))
	}
	rec := f.failedEmails.created[0]
	if rec.EmailType != model.EmailConfirmation {
		t.Errorf("retry record for %q, want confirmation", rec.EmailType)
	}
	if rec.Payload.Recipient != "jan@example.com" {
		t.Errorf("retry payload recipient %q", rec.Payload.Recipient)
	}
	if rec.LastError == "" {
		t.Error("retry record missing last error")
	}
}

func TestSubmit_BothEmailsFailing(t *testing.T) {
	f := newFormFixture()
	f.mail.SendFunc = func(ctx context.Context, to, subject, body string) (string, error) {
		return "", errors.New("smtp down")
	}

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormVirtualOffice,
		Data:     validVirtualOfficeData(),
		IP:       "127.0.0.1",
		Language: i18n.English,
	})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if len(f.failedEmails.created) != 2 {
		t.Fatalf("expected retry record per failed email, got %d", len(f.failedEmails.created))
	}
	types := map[model.EmailType]bool{}
	for _, rec := range f.failedEmails.created {
		types[rec.EmailType] = true
	}
	if !types[model.EmailConfirmation] || !types[model.EmailAdmin] {
		t.Errorf("expected one confirmation and one admin retry record, got %+v", types)
	}
}

func TestSubmit_HoneypotFakeSuccess(t *testing.T) {
	f := newFormFixture()

	data := validVirtualOfficeData()
	data["website"] = "http://spam.example.com"

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormVirtualOffice,
		Data:     data,
		IP:       "127.0.0.1",
		Language: i18n.English,
	})

	if !res.Success {
		t.Fatalf("honeypot hit must report success, got %+v", res)
	}
	if len(f.submissions.saved) != 0 {
		t.Errorf("honeypot hit must not be persisted")
	}
	if len(f.mail.sent) != 0 {
		t.Errorf("honeypot hit must not send email")
	}
}

func TestSubmit_RateLimitCheckError(t *testing.T) {
	f := newFormFixture()
	f.rateLimits.CheckFunc = func(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
		return false, errors.New("db down")
	}

	res := f.svc.Submit(context.Background(), SubmitRequest{
		FormType: model.FormVirtualOffice,
		Data:     validVirtualOfficeData(),
		IP:       "127.0.0.1",
		Language: i18n.English,
	})

	// A broken limiter fails closed as a server error, never an allow.
	if res.Success || res.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 failure, got %+v", res)
	}
	if len(f.submissions.saved) != 0 {
		t.Errorf("submission must not be persisted when the limiter fails")
	}
}

func TestRenderEmail_TypeSelectsTemplate(t *testing.T) {
	payload := model.EmailPayload{
		FormType:  model.FormVirtualOffice,
		Data:      map[string]string{"firstName": "Jan", "companyName": "Firma"},
		Language:  "en",
		Recipient: "jan@example.com",
	}

	confSubject, _ := RenderEmail(model.EmailConfirmation, payload)
	adminSubject, _ := RenderEmail(model.EmailAdmin, payload)

	if confSubject != "Your virtual office inquiry" {
		t.Errorf("confirmation subject %q", confSubject)
	}
	if adminSubject != "New submission: virtual office" {
		t.Errorf("admin subject %q", adminSubject)
	}
}
