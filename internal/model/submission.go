package model

import "time"

// FormType identifies which lead-capture form a submission came from.
type FormType string

const (
	FormVirtualOffice FormType = "virtual-office"
	FormCoworking     FormType = "coworking"
	FormMeetingRoom   FormType = "meeting-room"
	FormAdvertising   FormType = "advertising"
	FormSpecialDeals  FormType = "special-deals"
	FormContact       FormType = "contact"
)

// KnownFormTypes lists every form the API accepts, in route order.
var KnownFormTypes = []FormType{
	FormVirtualOffice,
	FormCoworking,
	FormMeetingRoom,
	FormSpecialDeals,
	FormAdvertising,
	FormContact,
}

// ValidFormType reports whether s names a known form.
func ValidFormType(s string) bool {
	for _, ft := range KnownFormTypes {
		if string(ft) == s {
			return true
		}
	}
	return false
}

// Submission statuses. Transitions past "pending" are admin-driven;
// the intake pipeline only ever creates pending rows.
const (
	SubmissionPending   = "pending"
	SubmissionContacted = "contacted"
	SubmissionCompleted = "completed"
	SubmissionCancelled = "cancelled"
)

// FormSubmission is one accepted lead-capture submission.
// Data holds the validated form fields as a flat key-value payload;
// IPHash is a salted one-way hash, never the raw IP.
type FormSubmission struct {
	ID          string            `json:"id"`
	FormType    FormType          `json:"form_type"`
	Data        map[string]string `json:"data"`
	Status      string            `json:"status"`
	IPHash      string            `json:"ip_hash"`
	SessionID   string            `json:"session_id,omitempty"`
	Language    string            `json:"language"`
	SubmittedAt time.Time         `json:"submitted_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SubmissionListOptions carries filter and pagination parameters for admin listing.
type SubmissionListOptions struct {
	// FormType filters by form; empty returns all forms.
	FormType string
	// Status filters by status: "", "all" or one of the status constants.
	Status string
	Limit  int
	Offset int
}
