// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo_backend/internal/feature/auth/domain"
	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/transport/http/dto"
	"todo_backend/internal/feature/auth/usecase"
	"todo_backend/internal/platform/metrics"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Snapshot は現在の認証状態を返します。
	Snapshot() usecase.Snapshot
	// Signup は新規ユーザーを登録し、そのままログインします。
	Signup(ctx context.Context, email, password, name string, role entity.Role) (*entity.User, error)
	// Login はユーザーを認証し、新しいセッションを発行します。
	Login(ctx context.Context, email, password string) (*entity.User, error)
	// Logout は現在のセッションを終了します。
	Logout(ctx context.Context) error
	// UpdateProfile は現在のユーザーのプロフィールを更新します。
	UpdateProfile(ctx context.Context, upd usecase.ProfileUpdate) (*entity.User, error)
	// ChangePassword は現在のユーザーのパスワードを変更します。
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	metrics *metrics.Metrics
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// mはnilでも構いません。
func NewAuthHandler(auth AuthUsecase, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: m}
}

// Session は現在の認証状態を返します。
func (h *AuthHandler) Session(c *gin.Context) {
	snap := h.auth.Snapshot()
	c.JSON(http.StatusOK, dto.SessionRes{
		CurrentUser:     dto.UserResFromEntity(snap.CurrentUser),
		Loading:         snap.Loading,
		Error:           snap.Error,
		IsAuthenticated: snap.IsAuthenticated,
	})
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時はユーザー付きで201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if !h.bind(c, "signup", &req) {
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password, req.Name, entity.Role(req.Role))
	if err != nil {
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		h.fail(c, "signup", err)
		return
	}
	slog.Info("user signup successful", "email", user.Email, "remote_addr", c.ClientIP())
	h.metrics.Auth("signup", metrics.OutcomeSuccess)
	c.JSON(http.StatusCreated, dto.ResultRes{Success: true, User: dto.UserResFromEntity(user)})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// ユーザー未検出とパスワード不一致は同じ401を返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !h.bind(c, "login", &req) {
		return
	}
	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		h.fail(c, "login", err)
		return
	}
	slog.Info("user login successful", "email", user.Email, "remote_addr", c.ClientIP())
	h.metrics.Auth("login", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, dto.ResultRes{Success: true, User: dto.UserResFromEntity(user)})
}

// Logout はログアウトAPIエンドポイントを処理します。
// ログイン中でなくても成功を返します。
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		h.fail(c, "logout", err)
		return
	}
	h.metrics.Auth("logout", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, dto.ResultRes{Success: true})
}

// UpdateProfile はプロフィール更新APIエンドポイントを処理します。
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileReq
	if !h.bind(c, "update_profile", &req) {
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), usecase.ProfileUpdate{
		Name:         req.Name,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		h.fail(c, "update_profile", err)
		return
	}
	h.metrics.Auth("update_profile", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, dto.ResultRes{Success: true, User: dto.UserResFromEntity(user)})
}

// ChangePassword はパスワード変更APIエンドポイントを処理します。
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordReq
	if !h.bind(c, "change_password", &req) {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, "change_password", err)
		return
	}
	h.metrics.Auth("change_password", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, dto.ResultRes{Success: true})
}

// bind はリクエストJSONをバインドし、失敗時は400を返却します。
func (h *AuthHandler) bind(c *gin.Context, op string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		h.metrics.Auth(op, metrics.OutcomeRejected)
		c.JSON(http.StatusBadRequest, dto.ResultRes{Success: false, Error: "invalid request"})
		return false
	}
	return true
}

// fail はユースケースのエラーをHTTPステータスとメッセージに変換します。
// 想定外のエラーは内部詳細を公開せず汎用メッセージで500を返却します。
func (h *AuthHandler) fail(c *gin.Context, op string, err error) {
	if !domain.IsValidation(err) {
		h.metrics.Auth(op, metrics.OutcomeError)
		c.JSON(http.StatusInternalServerError, dto.ResultRes{Success: false, Error: domain.ErrUnexpected.Error()})
		return
	}
	h.metrics.Auth(op, metrics.OutcomeRejected)
	c.JSON(statusFor(err), dto.ResultRes{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountDeactivated):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrIncorrectPassword), errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
