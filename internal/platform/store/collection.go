// Package store provides a generic gorm-backed collection used as the
// persistence adapter for entity repositories.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches the requested ID.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")

	// ErrRepository wraps every other storage failure.
	ErrRepository = errors.New("repository error")
)

// Collection exposes list/create/get/update/delete over one entity table.
type Collection[T any] struct {
	db   *gorm.DB
	name string
}

// NewCollection creates a Collection for T. The name is used in error messages only;
// the table itself comes from T's gorm schema.
func NewCollection[T any](db *gorm.DB, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// List returns every record in ID order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, c.wrap("list", err)
	}
	return out, nil
}

// Create inserts rec. gorm fills the ID and timestamps back into rec.
func (c *Collection[T]) Create(ctx context.Context, rec *T) error {
	if rec == nil {
		return fmt.Errorf("%s: create: nil record: %w", c.name, ErrRepository)
	}
	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		return c.wrap("create", err)
	}
	return nil
}

// Get returns the record with the given ID or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id uint) (*T, error) {
	var rec T
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, c.wrap("get", err)
	}
	return &rec, nil
}

// Update applies a partial update. Keys are column names; zero values are written as-is.
func (c *Collection[T]) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return c.wrap("update", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: update %d: %w", c.name, id, ErrNotFound)
	}
	return nil
}

// Delete removes the record with the given ID.
func (c *Collection[T]) Delete(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return c.wrap("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: delete %d: %w", c.name, id, ErrNotFound)
	}
	return nil
}

// DB exposes the underlying handle for repository-specific queries.
func (c *Collection[T]) DB(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx)
}

func (c *Collection[T]) wrap(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %s: %w", c.name, op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %s: %w", c.name, op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %s: %w: %v", c.name, op, ErrRepository, err)
	}
}
