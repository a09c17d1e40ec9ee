// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
// The messages are shown to the user as-is.
var (
	// ErrUserAlreadyExists indicates that a user with the given email already exists.
	// Comparison is case-insensitive.
	ErrUserAlreadyExists = errors.New("User with this email already exists.")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike,
	// so callers cannot tell which check failed.
	ErrInvalidCredentials = errors.New("Invalid email or password")

	// ErrAccountDeactivated indicates that the account exists but may not log in.
	ErrAccountDeactivated = errors.New("Account is deactivated")

	// ErrNotLoggedIn is returned by operations that need a current user.
	ErrNotLoggedIn = errors.New("No user logged in")

	// ErrIncorrectPassword is returned by ChangePassword when the current password does not match.
	ErrIncorrectPassword = errors.New("Current password is incorrect")

	// ErrInvalidRole is returned when signup names a role outside the fixed set.
	ErrInvalidRole = errors.New("Invalid role")

	// ErrUnexpected is the message surfaced for storage failures.
	ErrUnexpected = errors.New("An unexpected error occurred. Please try again.")
)

// IsValidation reports whether err is a user-facing validation failure
// rather than a storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUserAlreadyExists) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountDeactivated) ||
		errors.Is(err, ErrNotLoggedIn) ||
		errors.Is(err, ErrIncorrectPassword) ||
		errors.Is(err, ErrInvalidRole)
}
