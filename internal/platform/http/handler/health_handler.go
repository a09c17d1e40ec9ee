// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存サービスの疎通確認です。nilを返せば正常です。
type Check func(ctx context.Context) error

// HealthHandler は /healthz エンドポイントを処理します。
type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewHealthHandler は名前付きの疎通確認を持つHealthHandlerを生成します。
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Health はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// いずれかの確認が失敗した場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": results})
}
