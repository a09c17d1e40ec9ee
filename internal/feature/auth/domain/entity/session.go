package entity

import (
	"time"

	"todo_backend/internal/platform/credential"
)

// Session is the client-side session: the current token and its absolute expiry.
// Both parts are stored independently, so either may be missing.
type Session struct {
	Token     string    // opaque bearer token, empty if absent
	ExpiresAt time.Time // zero if absent
}

// HasToken reports whether a token is stored.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// HasExpiry reports whether an expiry is stored.
func (s Session) HasExpiry() bool {
	return !s.ExpiresAt.IsZero()
}

// IsExpired returns true if the expiry is absent or has passed.
func (s Session) IsExpired(now time.Time) bool {
	return credential.IsExpired(s.ExpiresAt, now)
}
