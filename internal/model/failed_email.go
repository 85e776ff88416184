package model

import "time"

// EmailType distinguishes the two emails dispatched per submission.
type EmailType string

const (
	EmailConfirmation EmailType = "confirmation"
	EmailAdmin        EmailType = "admin"
)

// Failed-email record statuses. "processing" is a transient claim state used
// so overlapping retry passes cannot double-send the same record.
const (
	EmailPending    = "pending"
	EmailProcessing = "processing"
	EmailSent       = "sent"
	EmailFailed     = "failed"
)

// EmailPayload is everything needed to re-render an email after the original
// request is gone: the validated form data, the form it came from, the
// language it was submitted in, and the recipient.
type EmailPayload struct {
	FormType  FormType          `json:"form_type"`
	Data      map[string]string `json:"data"`
	Language  string            `json:"language"`
	Recipient string            `json:"recipient"`
}

// FailedEmailRecord is a durable retry-queue entry for an email whose
// delivery failed during the request flow. Created only by the request path;
// the retry worker mutates it but never creates new records.
type FailedEmailRecord struct {
	ID         string       `json:"id"`
	EmailType  EmailType    `json:"email_type"`
	Payload    EmailPayload `json:"payload"`
	Status     string       `json:"status"`
	RetryCount int          `json:"retry_count"`
	LastError  string       `json:"last_error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// FailedEmailStats is the retry-queue aggregate for the admin metrics endpoint.
type FailedEmailStats struct {
	Pending       int `json:"pending"`
	Sent          int `json:"sent"`
	Failed        int `json:"failed"`
	MaxRetryCount int `json:"max_retry_count"`
}
