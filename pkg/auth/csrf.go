package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// CSRF cookie/header pair. The cookie is deliberately not HttpOnly: the
// frontend reads it to echo the value in the header on mutating calls.
const (
	CSRFCookieName = "csrf-token"
	CSRFHeaderName = "x-csrf-token"
)

// MintCSRFToken returns a new cryptographically random token. The token is
// never stored server-side; the cookie is the only copy, and any cookie
// value echoed back in the header passes. Same-origin cookie isolation is
// the security boundary here.
func MintCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CSRFTokensMatch compares the cookie and header tokens in constant time.
// Empty values never match.
func CSRFTokensMatch(cookie, header string) bool {
	if cookie == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) == 1
}
