package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/biuromax/backend/pkg/auth"
)

// SecurityHeaders adds security response headers (CSP, HSTS, X-Frame-Options,
// etc.) to every response, regardless of auth outcome.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; frame-ancestors 'none'")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// CSRF mints the token cookie on every response that lacks one, and requires
// the cookie/header pair to match on every POST under /api. A mismatch is a
// hard 403, independent of admin-auth status.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cookieToken string
		if c, err := r.Cookie(auth.CSRFCookieName); err == nil {
			cookieToken = c.Value
		}

		if cookieToken == "" {
			token, err := auth.MintCSRFToken()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "csrf_mint_failed")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     auth.CSRFCookieName,
				Value:    token,
				Path:     "/",
				SameSite: http.SameSiteStrictMode,
				Secure:   r.TLS != nil,
			})
		}

		if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api") {
			if !auth.CSRFTokensMatch(cookieToken, r.Header.Get(auth.CSRFHeaderName)) {
				writeError(w, http.StatusForbidden, "invalid_csrf_token")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// AdminGate requires admin credentials on /admin and /api/admin paths. The
// public health path stays open. Configured credentials are enforced in
// every mode; unconfigured credentials bypass the gate outside production
// and fail closed (401, logged warning) in production.
func AdminGate(creds auth.Credentials, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if !isAdminPath(path) || path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}

			if !creds.Configured() {
				if production {
					// Never fail open: unconfigured admin auth in
					// production denies everything.
					slog.Warn("admin credentials not configured, denying admin access", "path", path)
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				// Development convenience: no credentials configured.
				next.ServeHTTP(w, r)
				return
			}

			if !creds.Authorize(r) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/admin") || strings.HasPrefix(path, "/api/admin")
}

// Chain applies the edge middleware in its fixed order: CORS, security
// headers, CSRF, admin gate, request log. This is the single chokepoint; it
// wraps every route.
func Chain(frontendURL string, creds auth.Credentials, production bool, next http.Handler) http.Handler {
	return CORS(frontendURL)(SecurityHeaders(CSRF(AdminGate(creds, production)(RequestLogger(next)))))
}
