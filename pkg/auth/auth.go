// Package auth holds the static-credential checks for the admin and
// analytics surfaces, and the CSRF token helpers.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenHeader is the secondary admin token header, an alternative to the
// Authorization bearer scheme for tooling that cannot set it.
const TokenHeader = "x-admin-token"

// Credentials is a static bearer-token / basic-auth credential pair.
// Either Token or User+Pass (or both) may be configured.
type Credentials struct {
	Token string
	User  string
	Pass  string
}

// Configured reports whether any credential check can succeed.
func (c Credentials) Configured() bool {
	return c.Token != "" || (c.User != "" && c.Pass != "")
}

// Authorize reports whether the request carries a valid credential:
// a bearer token, an equal value in the token header, or matching basic
// credentials. All comparisons are constant-time.
func (c Credentials) Authorize(r *http.Request) bool {
	if c.Token != "" {
		if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			if equal(bearer, c.Token) {
				return true
			}
		}
		if equal(r.Header.Get(TokenHeader), c.Token) {
			return true
		}
	}
	if c.User != "" && c.Pass != "" {
		if user, pass, ok := r.BasicAuth(); ok {
			if equal(user, c.User) && equal(pass, c.Pass) {
				return true
			}
		}
	}
	return false
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
