// Package adapters provides repository implementations for the todos feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todo_backend/internal/feature/todos/domain"
	"todo_backend/internal/feature/todos/domain/entity"
	"todo_backend/internal/feature/todos/usecase"
	"todo_backend/internal/platform/store"
)

// todoGorm is a GORM implementation of the TodoRepository interface.
type todoGorm struct {
	todos *store.Collection[entity.Todo]
}

// Compile-time check to ensure todoGorm implements TodoRepository.
var _ usecase.TodoRepository = (*todoGorm)(nil)

// NewTodoGorm creates a new instance of todoGorm.
func NewTodoGorm(db *gorm.DB) *todoGorm {
	return &todoGorm{todos: store.NewCollection[entity.Todo](db, "todos")}
}

// ListByUser retrieves the user's todos ordered by position.
func (r *todoGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Todo, error) {
	var out []entity.Todo
	if err := r.todos.DB(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Create persists a new todo.
func (r *todoGorm) Create(ctx context.Context, todo *entity.Todo) error {
	return r.todos.Create(ctx, todo)
}

// Get retrieves one of the user's todos.
func (r *todoGorm) Get(ctx context.Context, userID, id uint) (*entity.Todo, error) {
	t, err := r.todos.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if t.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	return t, nil
}

// Update applies a partial update to one of the user's todos.
func (r *todoGorm) Update(ctx context.Context, userID, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.todos.DB(ctx).Model(&entity.Todo{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

// Delete removes one of the user's todos.
func (r *todoGorm) Delete(ctx context.Context, userID, id uint) error {
	result := r.todos.DB(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entity.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

// Reorder sets positions in one transaction. An unknown ID rolls everything back.
func (r *todoGorm) Reorder(ctx context.Context, userID uint, ids []uint) error {
	return r.todos.DB(ctx).Transaction(func(tx *gorm.DB) error {
		for pos, id := range ids {
			result := tx.Model(&entity.Todo{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("position", pos)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domain.ErrTodoNotFound
			}
		}
		return nil
	})
}

// BulkUpdate applies fields to every listed todo the user owns.
func (r *todoGorm) BulkUpdate(ctx context.Context, userID uint, ids []uint, fields map[string]any) (int64, error) {
	result := r.todos.DB(ctx).Model(&entity.Todo{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// BulkDelete removes every listed todo the user owns.
func (r *todoGorm) BulkDelete(ctx context.Context, userID uint, ids []uint) (int64, error) {
	result := r.todos.DB(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&entity.Todo{})
	return result.RowsAffected, result.Error
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrTodoNotFound
	}
	return err
}
