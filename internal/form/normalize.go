package form

import "strings"

// phoneSeparators are the characters users type between digits.
var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// Normalize trims every value and applies field-specific cleanup in place.
// It is called by Validate so the same normalization always precedes the
// schema check; callers must not re-normalize ad hoc.
func Normalize(data map[string]string) {
	for k, v := range data {
		data[k] = strings.TrimSpace(v)
	}
	if phone, ok := data["phone"]; ok {
		data["phone"] = NormalizePhone(phone)
	}
	if email, ok := data["email"]; ok {
		data["email"] = strings.ToLower(email)
	}
	if nip, ok := data["nip"]; ok {
		data["nip"] = phoneSeparators.Replace(nip)
	}
}

// NormalizePhone strips the separators people put into phone numbers,
// keeping a single leading plus.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	plus := strings.HasPrefix(phone, "+")
	phone = phoneSeparators.Replace(strings.TrimPrefix(phone, "+"))
	if plus {
		return "+" + phone
	}
	return phone
}
