package model

import "time"

// AnalyticsEvent is one privacy-sanitized form-interaction event. The raw IP
// never reaches this struct: callers store only the salted hash. UserAgent is
// truncated and SessionID character-filtered before storage.
type AnalyticsEvent struct {
	ID           string    `json:"id"`
	FormType     string    `json:"form_type"`
	EventType    string    `json:"event_type"`
	FieldName    string    `json:"field_name,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SessionID    string    `json:"session_id"`
	IPHash       string    `json:"-"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Language     string    `json:"language,omitempty"`
	FormVersion  string    `json:"form_version,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnalyticsListOptions filters event reads and exports.
type AnalyticsListOptions struct {
	// Since bounds the read; zero means no lower bound.
	Since time.Time
	// FormType filters by form; empty returns all forms.
	FormType string
	Limit    int
}
