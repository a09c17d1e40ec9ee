package usecase

import "strings"

// normalizeEmail performs case-insensitive canonicalization.
func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
