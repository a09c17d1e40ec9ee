// Package entity defines the todo list entities.
package entity

import "time"

// Priority is the urgency of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo is one task owned by a user. Lists are ordered by Position.
type Todo struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"userId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	Priority    Priority   `gorm:"size:16;not null;default:medium" json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Position    int        `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
