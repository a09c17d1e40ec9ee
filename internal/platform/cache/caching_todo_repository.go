// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"todo_backend/internal/feature/todos/domain/entity"
	"todo_backend/internal/feature/todos/usecase"
)

// CachingTodoRepository decorates a TodoRepository with Redis caching.
// Only ListByUser is cached, one entry per user; every write for that user drops the entry.
type CachingTodoRepository struct {
	inner     usecase.TodoRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.TodoRepository = (*CachingTodoRepository)(nil)

// NewCachingTodoRepository decorates a TodoRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "todos".
// A nil rdb disables caching.
func NewCachingTodoRepository(rdb *redis.Client, ttl time.Duration, inner usecase.TodoRepository, namespace string) *CachingTodoRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "todos"
	}
	return &CachingTodoRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListByUser retrieves todos, checking cache first then falling back to the database.
func (c *CachingTodoRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Todo, error) {
	if c.rdb == nil {
		return c.inner.ListByUser(ctx, userID)
	}

	key := c.cacheKey(userID)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Todo
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// Create persists a todo and invalidates its owner's list.
func (c *CachingTodoRepository) Create(ctx context.Context, todo *entity.Todo) error {
	if err := c.inner.Create(ctx, todo); err != nil {
		return err
	}
	c.invalidate(ctx, todo.UserID)
	return nil
}

// Get is not cached.
func (c *CachingTodoRepository) Get(ctx context.Context, userID, id uint) (*entity.Todo, error) {
	return c.inner.Get(ctx, userID, id)
}

// Update applies a partial update and invalidates the user's list.
func (c *CachingTodoRepository) Update(ctx context.Context, userID, id uint, fields map[string]any) error {
	if err := c.inner.Update(ctx, userID, id, fields); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// Delete removes a todo and invalidates the user's list.
func (c *CachingTodoRepository) Delete(ctx context.Context, userID, id uint) error {
	if err := c.inner.Delete(ctx, userID, id); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// Reorder changes positions and invalidates the user's list.
func (c *CachingTodoRepository) Reorder(ctx context.Context, userID uint, ids []uint) error {
	if err := c.inner.Reorder(ctx, userID, ids); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// BulkUpdate updates several todos and invalidates the user's list.
func (c *CachingTodoRepository) BulkUpdate(ctx context.Context, userID uint, ids []uint, fields map[string]any) (int64, error) {
	n, err := c.inner.BulkUpdate(ctx, userID, ids, fields)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, userID)
	return n, nil
}

// BulkDelete removes several todos and invalidates the user's list.
func (c *CachingTodoRepository) BulkDelete(ctx context.Context, userID uint, ids []uint) (int64, error) {
	n, err := c.inner.BulkDelete(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, userID)
	return n, nil
}

// invalidate drops the user's cached list. Failures only log; the TTL bounds staleness.
func (c *CachingTodoRepository) invalidate(ctx context.Context, userID uint) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(userID)).Err(); err != nil {
		slog.Warn("failed to invalidate todo cache", "user_id", userID, "error", err)
	}
}

// cacheKey generates the cache key of a user's list.
func (c *CachingTodoRepository) cacheKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", c.namespace, userID)
}
