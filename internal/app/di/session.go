// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"todo_backend/internal/platform/session"
)

// NewSessionService creates the session service.
// If Redis is available, entries live in Redis and the returned feed carries
// changes made by other processes. Otherwise, it falls back to the SQL
// key-value table and the feed is nil.
func NewSessionService(rdb *redis.Client, db *gorm.DB) (*session.Service, session.ChangeFeed) {
	if rdb != nil {
		kv := session.NewSessionRedis(rdb, "session")
		return session.NewService(kv), kv
	}
	return session.NewService(session.NewSessionGorm(db)), nil
}
