package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "todo_backend/internal/feature/auth/transport/handler"
	authmw "todo_backend/internal/feature/auth/transport/middleware"
	todohandler "todo_backend/internal/feature/todos/transport/handler"
	"todo_backend/internal/platform/http/handler"
	"todo_backend/internal/platform/metrics"
	"todo_backend/internal/shared/ratelimiter"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *authhandler.AuthHandler
	Todos   *todohandler.TodoHandler
	Session authmw.SessionSource
	Metrics *metrics.Metrics
	// Credentials limits signup/login/password attempts. nil disables it.
	Credentials ratelimiter.Limiter
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// ブラウザUIから呼ばれるのでCORSを許可
	r.Use(cors.Default())

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	// 認証（未ログインでも呼べる）
	auth := r.Group("/auth")
	limited := []gin.HandlerFunc{}
	if h.Credentials != nil {
		limited = append(limited, ratelimiter.Middleware(h.Credentials))
	}
	{
		auth.GET("/session", h.Auth.Session)
		auth.POST("/signup", append(limited, h.Auth.Signup)...)
		auth.POST("/login", append(limited, h.Auth.Login)...)
		auth.POST("/logout", h.Auth.Logout)
		auth.PATCH("/profile", h.Auth.UpdateProfile)
		auth.POST("/password", append(limited, h.Auth.ChangePassword)...)
	}

	// 認証必須のルート
	// → 現在のセッションが必要になる
	todos := r.Group("/todos")
	todos.Use(authmw.AuthRequired(h.Session))
	{
		todos.GET("", h.Todos.List)
		todos.POST("", h.Todos.Create)
		todos.PATCH("/:id", h.Todos.Update)
		todos.DELETE("/:id", h.Todos.Delete)
		todos.POST("/reorder", h.Todos.Reorder)
		todos.POST("/bulk", h.Todos.Bulk)
	}

	return r
}
