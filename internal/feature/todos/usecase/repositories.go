package usecase

import (
	"context"

	"todo_backend/internal/feature/todos/domain/entity"
)

// TodoRepository abstracts the persistence layer for todos.
// Every call except Create is scoped to one owner; a todo owned by someone
// else behaves as if it did not exist (domain.ErrTodoNotFound).
type TodoRepository interface {
	// ListByUser returns the user's todos ordered by position, then ID.
	ListByUser(ctx context.Context, userID uint) ([]entity.Todo, error)

	// Create persists a todo and fills in its ID and timestamps.
	Create(ctx context.Context, todo *entity.Todo) error

	// Get retrieves one of the user's todos.
	Get(ctx context.Context, userID, id uint) (*entity.Todo, error)

	// Update applies a partial update keyed by column name.
	Update(ctx context.Context, userID, id uint, fields map[string]any) error

	// Delete removes one of the user's todos.
	Delete(ctx context.Context, userID, id uint) error

	// Reorder sets each listed todo's position to its index in ids.
	Reorder(ctx context.Context, userID uint, ids []uint) error

	// BulkUpdate applies fields to every listed todo and returns how many matched.
	BulkUpdate(ctx context.Context, userID uint, ids []uint, fields map[string]any) (int64, error)

	// BulkDelete removes every listed todo and returns how many were removed.
	BulkDelete(ctx context.Context, userID uint, ids []uint) (int64, error)
}

// Column names used for partial updates.
const (
	colTitle       = "title"
	colDescription = "description"
	colCompleted   = "completed"
	colPriority    = "priority"
	colDueDate     = "due_date"
)
