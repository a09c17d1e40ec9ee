package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	todoadapters "todo_backend/internal/feature/todos/adapters"
	todousecase "todo_backend/internal/feature/todos/usecase"
	"todo_backend/internal/platform/cache"
)

// NewTodoRepository creates the todo repository, wrapped with the Redis list
// cache when rdb is not nil. The TTL comes from TODO_CACHE_TTL.
func NewTodoRepository(rdb *redis.Client, db *gorm.DB) todousecase.TodoRepository {
	repo := todoadapters.NewTodoGorm(db)
	if rdb == nil {
		return repo
	}
	ttl := cache.TTLFromEnv(cache.EnvKeyTodoCacheTTL, 5*time.Minute)
	return cache.NewCachingTodoRepository(rdb, ttl, repo, "todos")
}
