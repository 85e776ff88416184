package model

import "time"

// RateLimitRecord is the persisted fixed-window counter for one identifier
// (a hashed IP). At most one row exists per identifier; the row is reused
// when a new window starts.
type RateLimitRecord struct {
	Identifier string    `json:"identifier"`
	Count      int       `json:"count"`
	ResetTime  time.Time `json:"reset_time"`
}

// DuplicateAttempt is an append-only log row written each time a request is
// denied for exceeding the rate limit. Used only for abuse analytics.
type DuplicateAttempt struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	CreatedAt  time.Time `json:"created_at"`
}

// RateLimitStats is the aggregate view exposed on the admin metrics endpoint.
type RateLimitStats struct {
	ActiveWindows     int `json:"active_windows"`
	DuplicateAttempts int `json:"duplicate_attempts_24h"`
}
