package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"todo_backend/internal/app/di"
	"todo_backend/internal/app/router"
	authadapters "todo_backend/internal/feature/auth/adapters"
	authentity "todo_backend/internal/feature/auth/domain/entity"
	authhandler "todo_backend/internal/feature/auth/transport/handler"
	authusecase "todo_backend/internal/feature/auth/usecase"
	todoentity "todo_backend/internal/feature/todos/domain/entity"
	todohandler "todo_backend/internal/feature/todos/transport/handler"
	todousecase "todo_backend/internal/feature/todos/usecase"
	"todo_backend/internal/platform/credential"
	platformdb "todo_backend/internal/platform/db"
	"todo_backend/internal/platform/http/handler"
	"todo_backend/internal/platform/metrics"
	platformredis "todo_backend/internal/platform/redis"
	"todo_backend/internal/platform/session"
	"todo_backend/internal/shared/ratelimiter"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(platformdb.LoadConfigFromEnv(),
		&authentity.User{},
		&todoentity.Todo{},
		&session.EntryModel{},
	)
	if err != nil {
		log.Fatal(err)
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(ctx, platformredis.LoadConfigFromEnv()); err != nil {
		if !errors.Is(err, platformredis.ErrNotConfigured) {
			log.Println("[WARN] Redis unavailable. Running without cache.")
		}
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Session
	sessions, feed := di.NewSessionService(rdb, db)
	if feed != nil {
		go func() {
			if err := sessions.Follow(ctx, feed); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("session change feed stopped", "error", err)
			}
		}()
	}

	// Repository
	userRepo := authadapters.NewUserGorm(db)
	todoRepo := di.NewTodoRepository(rdb, db)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, sessions, credential.NewMultiHasher(bcrypt.DefaultCost))
	provisionUC := authusecase.NewProvisionUsecase(userRepo, sessions, authusecase.LoadProvisionConfigFromEnv())
	todosUC := todousecase.NewTodosUsecase(todoRepo)

	// 管理者の自動ログイン（初回のみ）→ 保存済みセッションの読み込み
	if _, err := provisionUC.Run(ctx); err != nil {
		slog.Error("admin auto-login failed", "error", err)
	}
	if err := authUC.Bootstrap(ctx); err != nil {
		slog.Error("session bootstrap failed", "error", err)
	}
	go func() {
		if err := authUC.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("session watch stopped", "error", err)
		}
	}()

	// Handler
	m := metrics.New()
	checks := map[string]handler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Health:  handler.NewHealthHandler(checks),
		Auth:    authhandler.NewAuthHandler(authUC, m),
		Todos:   todohandler.NewTodoHandler(todosUC, m),
		Session: authUC,
		Metrics: m,
		// 認証系エンドポイントは1分あたり20回まで
		Credentials: ratelimiter.NewRateLimiter(20, time.Minute),
	})

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
