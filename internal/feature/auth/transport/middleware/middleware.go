// Package authmw provides the gin middleware that guards routes behind the current session.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todo_backend/internal/feature/auth/usecase"
)

// ContextUserID is the gin context key holding the authenticated user's ID (uint).
const ContextUserID = "userID"

// SessionSource exposes the current authentication state.
type SessionSource interface {
	Snapshot() usecase.Snapshot
}

// AuthRequired returns a Gin middleware function that restricts access to the
// user of the current session. A request that carries an Authorization header
// must present that session's token as a bearer token.
func AuthRequired(src SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 現在のセッションを取得
		snap := src.Snapshot()
		if !snap.IsAuthenticated || snap.CurrentUser == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}

		// 2. Authorizationヘッダーがあればセッショントークンと照合
		if auth := c.GetHeader("Authorization"); auth != "" {
			if !strings.HasPrefix(auth, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
				return
			}
			token := strings.TrimPrefix(auth, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(snap.CurrentUser.SessionToken)) != 1 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
		}

		// 3. ユーザーIDをコンテキストに設定
		c.Set(ContextUserID, snap.CurrentUser.ID)
		c.Next()
	}
}

// UserID returns the user ID set by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
