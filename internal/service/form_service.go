package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/biuromax/backend/internal/form"
	"github.com/biuromax/backend/internal/i18n"
	"github.com/biuromax/backend/internal/mailer"
	"github.com/biuromax/backend/internal/metrics"
	"github.com/biuromax/backend/internal/model"
	"github.com/biuromax/backend/internal/repository"
	"github.com/biuromax/backend/pkg/iphash"
)

// SubmitRequest is the normalized input for one form submission.
type SubmitRequest struct {
	FormType  model.FormType
	Data      map[string]string
	IP        string
	SessionID string
	Language  i18n.Language
}

// FormResult is the uniform response of the submission pipeline. The
// orchestrator is the only place that maps failures to user-facing text and
// an HTTP status; nothing below it formats user-visible messages.
type FormResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Status  int               `json:"status,omitempty"`
	Errors  []form.FieldError `json:"errors,omitempty"`
}

// FormService orchestrates validation, rate limiting, duplicate detection,
// persistence and email dispatch for one submission.
type FormService interface {
	Submit(ctx context.Context, req SubmitRequest) FormResult
}

// FormConfig carries the orchestrator's tunables.
type FormConfig struct {
	IPSalt     string
	AdminEmail string
	Limit      int
	Window     time.Duration
	// DuplicateWindow bounds the duplicate fingerprint check.
	DuplicateWindow time.Duration
}

type formServiceImpl struct {
	submissions  repository.SubmissionRepository
	rateLimits   repository.RateLimitRepository
	failedEmails repository.FailedEmailRepository
	reqMetrics   repository.RequestMetricRepository
	mail         mailer.Mailer
	prom         *metrics.Metrics
	cfg          FormConfig
}

// NewFormService creates the production FormService. prom may be nil in tests.
func NewFormService(
	submissions repository.SubmissionRepository,
	rateLimits repository.RateLimitRepository,
	failedEmails repository.FailedEmailRepository,
	reqMetrics repository.RequestMetricRepository,
	mail mailer.Mailer,
	prom *metrics.Metrics,
	cfg FormConfig,
) FormService {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Minute
	}
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = 24 * time.Hour
	}
	return &formServiceImpl{
		submissions:  submissions,
		rateLimits:   rateLimits,
		failedEmails: failedEmails,
		reqMetrics:   reqMetrics,
		mail:         mail,
		prom:         prom,
		cfg:          cfg,
	}
}

// Submit runs the pipeline: validate → rate-limit → duplicate check →
// persist → email. Email delivery is decoupled from acceptance: once the
// submission row is written the result is success, and a failed send only
// enqueues a durable retry record.
func (s *formServiceImpl) Submit(ctx context.Context, req SubmitRequest) FormResult {
	start := time.Now()
	lang := req.Language

	// Honeypot: bots fill the hidden field. Pretend success, store nothing.
	if req.Data["website"] != "" {
		return FormResult{Success: true, Message: i18n.Message(lang, i18n.MsgSubmitted)}
	}
	delete(req.Data, "website")

	if err := form.Validate(req.FormType, req.Data); err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			s.count(req.FormType, "invalid")
			return FormResult{
				Success: false,
				Message: i18n.Message(lang, i18n.MsgInvalid),
				Status:  http.StatusBadRequest,
				Errors:  verr.Fields,
			}
		}
		// Unknown form type: the router should not let this through.
		return FormResult{Success: false, Message: i18n.Message(lang, i18n.MsgInvalid), Status: http.StatusBadRequest}
	}

	ipHash := iphash.Hash(req.IP, s.cfg.IPSalt)

	allowed, err := s.rateLimits.Check(ctx, ipHash, s.cfg.Limit, s.cfg.Window)
	if err != nil {
		return s.serverError(ctx, req.FormType, start, lang, "rate limit check failed", err)
	}
	if !allowed {
		if s.prom != nil {
			s.prom.RateLimitedTotal.Inc()
		}
		s.count(req.FormType, "rate_limited")
		return FormResult{
			Success: false,
			Message: i18n.Message(lang, i18n.MsgRateLimited),
			Status:  http.StatusTooManyRequests,
		}
	}

	since := time.Now().UTC().Add(-s.cfg.DuplicateWindow)
	dup, err := s.submissions.HasRecentDuplicate(ctx, req.FormType, req.Data["email"], ipHash, since)
	if err != nil {
		return s.serverError(ctx, req.FormType, start, lang, "duplicate check failed", err)
	}
	if dup {
		s.count(req.FormType, "duplicate")
		return FormResult{
			Success: false,
			Message: i18n.Message(lang, i18n.MsgDuplicate),
			Status:  http.StatusConflict,
		}
	}

	sub := &model.FormSubmission{
		FormType:  req.FormType,
		Data:      req.Data,
		Status:    model.SubmissionPending,
		IPHash:    ipHash,
		SessionID: req.SessionID,
		Language:  string(lang),
	}
	if err := s.submissions.Save(ctx, sub); err != nil {
		return s.serverError(ctx, req.FormType, start, lang, "submission save failed", err)
	}

	emailStart := time.Now()
	payload := model.EmailPayload{
		FormType:  req.FormType,
		Data:      req.Data,
		Language:  string(lang),
		Recipient: req.Data["email"],
	}
	s.dispatch(ctx, model.EmailConfirmation, payload)

	adminPayload := payload
	adminPayload.Recipient = s.cfg.AdminEmail
	s.dispatch(ctx, model.EmailAdmin, adminPayload)
	emailMs := time.Since(emailStart).Milliseconds()

	s.record(ctx, req.FormType, start, emailMs, false)
	s.count(req.FormType, "accepted")
	if s.prom != nil {
		s.prom.SubmissionSecs.WithLabelValues(string(req.FormType)).Observe(time.Since(start).Seconds())
	}

	return FormResult{Success: true, Message: i18n.Message(lang, i18n.MsgSubmitted)}
}

// dispatch sends one email; on failure it enqueues exactly one durable retry
// record and never propagates the error to the request outcome.
func (s *formServiceImpl) dispatch(ctx context.Context, typ model.EmailType, payload model.EmailPayload) {
	if payload.Recipient == "" {
		return
	}

	subject, body := RenderEmail(typ, payload)
	if _, err := s.mail.Send(ctx, payload.Recipient, subject, body); err != nil {
		slog.Error("email dispatch failed, enqueueing retry",
			"email_type", typ, "form_type", payload.FormType, "error", err)
		if s.prom != nil {
			s.prom.EmailsTotal.WithLabelValues(string(typ), "failed").Inc()
		}

		rec := &model.FailedEmailRecord{EmailType: typ, Payload: payload, LastError: err.Error()}
		if err := s.failedEmails.Create(ctx, rec); err != nil {
			slog.Error("failed to enqueue email retry record", "email_type", typ, "error", err)
		}
		return
	}
	if s.prom != nil {
		s.prom.EmailsTotal.WithLabelValues(string(typ), "sent").Inc()
	}
}

// RenderEmail renders an email of the given type from its stored payload.
// Shared with the retry worker so resends are byte-identical.
func RenderEmail(typ model.EmailType, payload model.EmailPayload) (subject, body string) {
	lang := i18n.Language(payload.Language)
	if typ == model.EmailAdmin {
		return mailer.RenderAdminNotification(payload.FormType, payload.Data, lang)
	}
	return mailer.RenderConfirmation(payload.FormType, payload.Data, lang)
}

func (s *formServiceImpl) serverError(ctx context.Context, ft model.FormType, start time.Time, lang i18n.Language, msg string, err error) FormResult {
	slog.Error(msg, "form_type", ft, "error", err)
	s.record(ctx, ft, start, 0, true)
	s.count(ft, "error")
	return FormResult{
		Success: false,
		Message: i18n.Message(lang, i18n.MsgServerError),
		Status:  http.StatusInternalServerError,
	}
}

// record persists one timing sample; failures are logged, never surfaced.
func (s *formServiceImpl) record(ctx context.Context, ft model.FormType, start time.Time, emailMs int64, isError bool) {
	if s.reqMetrics == nil {
		return
	}
	m := &model.RequestMetric{
		FormType:   string(ft),
		DurationMs: time.Since(start).Milliseconds(),
		EmailMs:    emailMs,
		IsError:    isError,
	}
	if err := s.reqMetrics.Record(ctx, m); err != nil {
		slog.Error("request metric record failed", "error", err)
	}
}

func (s *formServiceImpl) count(ft model.FormType, outcome string) {
	if s.prom != nil {
		s.prom.SubmissionsTotal.WithLabelValues(string(ft), outcome).Inc()
	}
}
