package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/biuromax/backend/internal/form"
	"github.com/biuromax/backend/internal/model"
	"github.com/biuromax/backend/internal/repository"
	"github.com/biuromax/backend/pkg/iphash"
)

// ErrRateLimited is returned when the analytics rate limiter denies a track
// request.
var ErrRateLimited = errors.New("rate limited")

// TrackInput is one raw (unsanitized) analytics event from the client.
type TrackInput struct {
	FormType     string `json:"formType"`
	EventType    string `json:"eventType"`
	FieldName    string `json:"fieldName,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Timestamp    int64  `json:"timestamp"`
	SessionID    string `json:"sessionId"`
	UserAgent    string `json:"userAgent,omitempty"`
	Language     string `json:"language,omitempty"`
	FormVersion  string `json:"formVersion,omitempty"`
}

// AnalyticsService ingests and exports sanitized form-interaction events.
type AnalyticsService interface {
	// Track validates, rate-limits by hashed IP and stores one event.
	// Returns ErrRateLimited, a *form.ValidationError, or a storage error.
	Track(ctx context.Context, in TrackInput, ip string) error
	// Export returns events with identifying fields stripped.
	Export(ctx context.Context, opts model.AnalyticsListOptions) ([]*model.AnalyticsEvent, error)
}

// AnalyticsConfig carries the track endpoint's own rate-limit pair, looser
// than the forms pipeline's.
type AnalyticsConfig struct {
	IPSalt string
	Limit  int
	Window time.Duration
}

type analyticsServiceImpl struct {
	events     repository.AnalyticsRepository
	rateLimits repository.RateLimitRepository
	cfg        AnalyticsConfig
}

// NewAnalyticsService creates the production AnalyticsService.
func NewAnalyticsService(events repository.AnalyticsRepository, rateLimits repository.RateLimitRepository, cfg AnalyticsConfig) AnalyticsService {
	if cfg.Limit <= 0 {
		cfg.Limit = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &analyticsServiceImpl{events: events, rateLimits: rateLimits, cfg: cfg}
}

// knownEventTypes is the accepted event vocabulary.
var knownEventTypes = map[string]bool{
	"form_view":        true,
	"field_focus":      true,
	"field_error":      true,
	"form_submit":      true,
	"form_success":     true,
	"form_error":       true,
	"form_abandon":     true,
	"language_switch":  true,
	"validation_error": true,
}

func (s *analyticsServiceImpl) Track(ctx context.Context, in TrackInput, ip string) error {
	if err := validateTrack(in); err != nil {
		return err
	}

	ipHash := iphash.Hash(ip, s.cfg.IPSalt)
	allowed, err := s.rateLimits.Check(ctx, ipHash, s.cfg.Limit, s.cfg.Window)
	if err != nil {
		return fmt.Errorf("analytics rate limit check: %w", err)
	}
	if !allowed {
		return ErrRateLimited
	}

	ev := &model.AnalyticsEvent{
		FormType:     in.FormType,
		EventType:    in.EventType,
		FieldName:    in.FieldName,
		ErrorMessage: truncate(in.ErrorMessage, 500),
		SessionID:    sanitizeSessionID(in.SessionID),
		IPHash:       ipHash,
		UserAgent:    truncate(in.UserAgent, 200),
		Language:     in.Language,
		FormVersion:  in.FormVersion,
		Timestamp:    time.UnixMilli(in.Timestamp).UTC(),
	}
	return s.events.Save(ctx, ev)
}

// Export strips the IP hash and user agent before the events leave the
// service; exports carry behavioral data only.
func (s *analyticsServiceImpl) Export(ctx context.Context, opts model.AnalyticsListOptions) ([]*model.AnalyticsEvent, error) {
	events, err := s.events.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		ev.IPHash = ""
		ev.UserAgent = ""
	}
	if events == nil {
		events = []*model.AnalyticsEvent{}
	}
	return events, nil
}

// validateTrack checks the event schema, reporting every failing field.
func validateTrack(in TrackInput) error {
	var fields []form.FieldError
	if in.FormType == "" {
		fields = append(fields, form.FieldError{Field: "formType", Reason: form.ReasonMissing})
	} else if !model.ValidFormType(in.FormType) {
		fields = append(fields, form.FieldError{Field: "formType", Reason: form.ReasonMalformed})
	}
	if in.EventType == "" {
		fields = append(fields, form.FieldError{Field: "eventType", Reason: form.ReasonMissing})
	} else if !knownEventTypes[in.EventType] {
		fields = append(fields, form.FieldError{Field: "eventType", Reason: form.ReasonMalformed})
	}
	if in.SessionID == "" {
		fields = append(fields, form.FieldError{Field: "sessionId", Reason: form.ReasonMissing})
	}
	if in.Timestamp <= 0 {
		fields = append(fields, form.FieldError{Field: "timestamp", Reason: form.ReasonMissing})
	}
	if len(fields) > 0 {
		return &form.ValidationError{Fields: fields}
	}
	return nil
}

// sanitizeSessionID keeps only [A-Za-z0-9_-], capped at 64 characters.
func sanitizeSessionID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if b.Len() >= 64 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncate caps s at max bytes without splitting a UTF-8 rune; a rune
// straddling the boundary is dropped whole so the result stays valid for
// storage.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
