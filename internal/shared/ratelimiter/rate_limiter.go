package ratelimiter

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter は、固定ウィンドウ内の試行回数を制限するインターフェースです。
type Limiter interface {
	Allow() bool
}

// RateLimiter は、interval ごとに limit 回までの操作を許可します。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // ウィンドウあたりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Allow は上限に達していなければカウントして true を返します。
// 待機はせず、上限超過時は false を返します。
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	if rl.count >= rl.limit {
		return false
	}
	rl.count++
	return true
}

// Middleware は上限超過のリクエストを 429 で拒否する gin ハンドラを返します。
func Middleware(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			slog.Warn("rate limit hit", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many requests"})
			return
		}
		c.Next()
	}
}
