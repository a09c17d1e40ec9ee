// Package domain defines domain-level errors for the todos feature.
package domain

import "errors"

var (
	// ErrTodoNotFound is returned when a todo does not exist or belongs to another user.
	ErrTodoNotFound = errors.New("Todo not found")

	ErrTitleRequired     = errors.New("Title is required")
	ErrInvalidPriority   = errors.New("Invalid priority")
	ErrInvalidStatus     = errors.New("Invalid status filter")
	ErrInvalidBulkAction = errors.New("Invalid bulk action")
	ErrEmptySelection    = errors.New("No todos selected")
)

// IsValidation reports whether err is caused by the request rather than storage.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidBulkAction) ||
		errors.Is(err, ErrEmptySelection)
}
