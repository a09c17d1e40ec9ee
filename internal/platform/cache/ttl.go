package cache

import (
	"log/slog"
	"os"
	"time"
)

// EnvKeyTodoCacheTTL overrides the todo list cache TTL (Go duration syntax, e.g. "10m").
const EnvKeyTodoCacheTTL = "TODO_CACHE_TTL"

// TTLFromEnv returns the duration in the environment variable key, or def when
// it is unset or not a positive duration.
func TTLFromEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid cache TTL; using default", "key", key, "value", raw, "default", def)
		return def
	}
	return d
}
