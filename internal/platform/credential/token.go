// Package credential provides password hashing, session token minting and
// session expiry helpers.
package credential

import (
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long a freshly minted session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// NewToken returns a random opaque session token.
// The value has no structure beyond being globally unique.
func NewToken() string {
	return uuid.NewString()
}

// ExpiryTimestamp returns the absolute expiry for a session created at now.
func ExpiryTimestamp(now time.Time) time.Time {
	return now.Add(SessionTTL).UTC()
}

// IsExpired reports whether ts is absent (zero) or already in the past.
func IsExpired(ts, now time.Time) bool {
	if ts.IsZero() {
		return true
	}
	return ts.Before(now)
}
