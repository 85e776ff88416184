package form

import (
	"regexp"

	"github.com/biuromax/backend/internal/model"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Permissive international phone: optional +country code, digits only
	// (separators are stripped by normalization before this runs).
	phonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)
	// Polish NIP: exactly ten digits.
	nipPattern       = regexp.MustCompile(`^\d{10}$`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern      = regexp.MustCompile(`^\d{2}:\d{2}$`)
	attendeesPattern = regexp.MustCompile(`^\d{1,3}$`)
)

// Rule describes one field of a form schema. A nil Pattern accepts any
// non-empty value; Check, when set, runs after the pattern.
type Rule struct {
	Field    string
	Required bool
	Pattern  *regexp.Regexp
	Check    func(value string) bool
}

// baseContactRules is the shared contact schema every form extends:
// name, email, phone and the GDPR consent flag, which must be "true".
var baseContactRules = []Rule{
	{Field: "firstName", Required: true},
	{Field: "lastName", Required: true},
	{Field: "email", Required: true, Pattern: emailPattern},
	{Field: "phone", Required: true, Pattern: phonePattern},
	{Field: "gdprConsent", Required: true, Check: func(v string) bool { return v == "true" }},
}

// schemas maps each form type to its full rule set (base + form-specific).
var schemas = map[model.FormType][]Rule{
	model.FormVirtualOffice: withBase(
		Rule{Field: "package", Required: true},
		Rule{Field: "startDate", Required: true, Pattern: datePattern},
		Rule{Field: "businessType", Required: true},
		Rule{Field: "companyName"},
		Rule{Field: "nip", Pattern: nipPattern},
	),
	model.FormCoworking: withBase(
		Rule{Field: "workspaceType", Required: true},
		Rule{Field: "startDate", Required: true, Pattern: datePattern},
		Rule{Field: "duration", Required: true},
	),
	model.FormMeetingRoom: withBase(
		Rule{Field: "date", Required: true, Pattern: datePattern},
		Rule{Field: "startTime", Required: true, Pattern: timePattern},
		Rule{Field: "endTime", Required: true, Pattern: timePattern},
		Rule{Field: "attendees", Required: true, Pattern: attendeesPattern},
	),
	model.FormAdvertising: withBase(
		Rule{Field: "adType", Required: true},
		Rule{Field: "message", Required: true},
	),
	model.FormSpecialDeals: withBase(
		Rule{Field: "deal", Required: true},
		Rule{Field: "message"},
	),
	model.FormContact: withBase(
		Rule{Field: "subject"},
		Rule{Field: "message", Required: true},
	),
}

func withBase(extra ...Rule) []Rule {
	rules := make([]Rule, 0, len(baseContactRules)+len(extra))
	rules = append(rules, baseContactRules...)
	rules = append(rules, extra...)
	return rules
}

// Schema returns the rule set for the given form type, or nil for an
// unknown form.
func Schema(ft model.FormType) []Rule {
	return schemas[ft]
}
