// Package iphash derives the salted one-way fingerprint that stands in for
// a client IP everywhere in the system. Raw IPs are never stored.
package iphash

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
)

// DefaultSalt is the development fallback used when IP_SALT is not
// configured. Production deployments must set their own salt.
const DefaultSalt = "default-salt"

var warnOnce sync.Once

// Hash returns the first 16 hex characters of sha256(ip + salt).
// Deterministic for a fixed salt, so the same client maps to the same
// fingerprint across requests and processes.
func Hash(ip, salt string) string {
	if salt == "" {
		warnOnce.Do(func() {
			slog.Warn("IP_SALT not configured, using default salt")
		})
		salt = DefaultSalt
	}
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])[:16]
}
