// Package i18n owns language detection and the localized user-facing
// messages for the bilingual (Polish/English) site.
package i18n

import "strings"

// Language is a supported UI language.
type Language string

const (
	Polish  Language = "pl"
	English Language = "en"
)

// DefaultLanguage is the site default: Polish.
const DefaultLanguage = Polish

// Detect resolves the request language with one fixed fallback order:
// explicit parameter > cookie > Accept-Language header > Polish.
// Every code path that needs a language goes through this function.
func Detect(explicit, cookie, acceptHeader string) Language {
	if lang, ok := parse(explicit); ok {
		return lang
	}
	if lang, ok := parse(cookie); ok {
		return lang
	}
	for _, part := range strings.Split(acceptHeader, ",") {
		tag := strings.TrimSpace(part)
		if i := strings.IndexByte(tag, ';'); i >= 0 {
			tag = tag[:i]
		}
		if lang, ok := parse(tag); ok {
			return lang
		}
	}
	return DefaultLanguage
}

// parse maps a language tag (possibly region-qualified, e.g. "en-GB") to a
// supported Language.
func parse(tag string) (Language, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case tag == "pl" || strings.HasPrefix(tag, "pl-"):
		return Polish, true
	case tag == "en" || strings.HasPrefix(tag, "en-"):
		return English, true
	}
	return "", false
}

// Message keys for the uniform form responses.
const (
	MsgSubmitted   = "submitted"
	MsgRateLimited = "rate_limited"
	MsgDuplicate   = "duplicate"
	MsgInvalid     = "invalid"
	MsgServerError = "server_error"
)

var messages = map[Language]map[string]string{
	Polish: {
		MsgSubmitted:   "Dziękujemy za zgłoszenie. Skontaktujemy się wkrótce.",
		MsgRateLimited: "Zbyt wiele prób. Spróbuj ponownie później.",
		MsgDuplicate:   "To zgłoszenie zostało już wysłane.",
		MsgInvalid:     "Formularz zawiera błędy. Sprawdź zaznaczone pola.",
		MsgServerError: "Wystąpił błąd serwera. Spróbuj ponownie później.",
	},
	English: {
		MsgSubmitted:   "Thank you for your inquiry. We will contact you soon.",
		MsgRateLimited: "Too many attempts. Please try again later.",
		MsgDuplicate:   "This inquiry has already been submitted.",
		MsgInvalid:     "The form contains errors. Please check the highlighted fields.",
		MsgServerError: "A server error occurred. Please try again later.",
	},
}

// Message returns the localized user-facing text for key, falling back to
// Polish for unknown languages.
func Message(lang Language, key string) string {
	table, ok := messages[lang]
	if !ok {
		table = messages[DefaultLanguage]
	}
	return table[key]
}
