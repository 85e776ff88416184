package form

import (
	"fmt"
	"strings"

	"github.com/biuromax/backend/internal/model"
)

// Field error reasons. "missing" means the field was absent or empty;
// "malformed" means it was present but failed its pattern or check.
const (
	ReasonMissing   = "missing"
	ReasonMalformed = "malformed"
)

// FieldError is one per-field validation failure.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries the full per-field error list for a rejected
// payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validate normalizes data in place and checks it against the schema for ft.
// Validation is purely structural: it never touches storage. A nil return
// means the payload is acceptable; otherwise the error is a *ValidationError
// listing every failing field.
func Validate(ft model.FormType, data map[string]string) error {
	rules := Schema(ft)
	if rules == nil {
		return fmt.Errorf("unknown form type %q", ft)
	}

	Normalize(data)

	var fields []FieldError
	for _, rule := range rules {
		value := data[rule.Field]
		if value == "" {
			if rule.Required {
				fields = append(fields, FieldError{Field: rule.Field, Reason: ReasonMissing})
			}
			continue
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			fields = append(fields, FieldError{Field: rule.Field, Reason: ReasonMalformed})
			continue
		}
		if rule.Check != nil && !rule.Check(value) {
			fields = append(fields, FieldError{Field: rule.Field, Reason: ReasonMalformed})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
