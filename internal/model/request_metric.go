package model

import "time"

// RequestMetric is one timing sample recorded by the form pipeline: how long
// the whole submission took, how long the email dispatch portion took, and
// whether the request ended in an error.
type RequestMetric struct {
	ID         string    `json:"id"`
	FormType   string    `json:"form_type"`
	DurationMs int64     `json:"duration_ms"`
	EmailMs    int64     `json:"email_ms"`
	IsError    bool      `json:"is_error"`
	RecordedAt time.Time `json:"recorded_at"`
}

// HourlyMetric is one hour bucket of aggregated request metrics.
type HourlyMetric struct {
	Hour          time.Time `json:"hour"`
	Requests      int       `json:"requests"`
	AvgDurationMs float64   `json:"avg_duration_ms"`
	MaxDurationMs int64     `json:"max_duration_ms"`
	AvgEmailMs    float64   `json:"avg_email_ms"`
	MaxEmailMs    int64     `json:"max_email_ms"`
	Errors        int       `json:"errors"`
}
