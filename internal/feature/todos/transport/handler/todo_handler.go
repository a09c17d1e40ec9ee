// Package handler はtodosフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authmw "todo_backend/internal/feature/auth/transport/middleware"
	"todo_backend/internal/feature/todos/domain"
	"todo_backend/internal/feature/todos/domain/entity"
	"todo_backend/internal/feature/todos/transport/http/dto"
	"todo_backend/internal/feature/todos/usecase"
	"todo_backend/internal/platform/metrics"
)

// TodosUsecase はtodo操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type TodosUsecase interface {
	List(ctx context.Context, userID uint, f usecase.Filter) ([]entity.Todo, error)
	Create(ctx context.Context, userID uint, in usecase.CreateInput) (*entity.Todo, error)
	Update(ctx context.Context, userID, id uint, in usecase.UpdateInput) (*entity.Todo, error)
	Delete(ctx context.Context, userID, id uint) error
	Reorder(ctx context.Context, userID uint, ids []uint) error
	Bulk(ctx context.Context, userID uint, action usecase.BulkAction, ids []uint) (int64, error)
}

// TodoHandler はtodoのHTTPリクエストを処理します。
// すべてのルートはauthmw.AuthRequiredの後ろに置く必要があります。
type TodoHandler struct {
	uc      TodosUsecase
	metrics *metrics.Metrics
}

// NewTodoHandler はTodoHandlerの新しいインスタンスを生成します。
func NewTodoHandler(uc TodosUsecase, m *metrics.Metrics) *TodoHandler {
	return &TodoHandler{uc: uc, metrics: m}
}

// List はユーザーのtodo一覧を返します。
//
// エンドポイント例:
// GET /todos?status=active&priority=high&q=milk
func (h *TodoHandler) List(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	todos, err := h.uc.List(c.Request.Context(), userID, usecase.Filter{
		Status:   c.Query("status"),
		Priority: entity.Priority(c.Query("priority")),
		Query:    c.Query("q"),
	})
	if err != nil {
		h.fail(c, "list", err)
		return
	}

	out := make([]dto.TodoRes, 0, len(todos))
	for _, t := range todos {
		out = append(out, dto.TodoResFromEntity(t))
	}
	h.metrics.Todo("list", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, out)
}

// Create は新しいtodoを作成します。
func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	var req dto.CreateTodoReq
	if !h.bind(c, "create", &req) {
		return
	}
	todo, err := h.uc.Create(c.Request.Context(), userID, usecase.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    entity.Priority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	h.metrics.Todo("create", metrics.OutcomeSuccess)
	c.JSON(http.StatusCreated, dto.TodoResFromEntity(*todo))
}

// Update はtodoを部分更新します。
func (h *TodoHandler) Update(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	id, ok := h.id(c)
	if !ok {
		return
	}
	var req dto.UpdateTodoReq
	if !h.bind(c, "update", &req) {
		return
	}

	in := usecase.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Completed:    req.Completed,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}
	if req.Priority != nil {
		p := entity.Priority(*req.Priority)
		in.Priority = &p
	}

	todo, err := h.uc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	h.metrics.Todo("update", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, dto.TodoResFromEntity(*todo))
}

// Delete はtodoを削除します。
func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	id, ok := h.id(c)
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), userID, id); err != nil {
		h.fail(c, "delete", err)
		return
	}
	h.metrics.Todo("delete", metrics.OutcomeSuccess)
	c.Status(http.StatusNoContent)
}

// Reorder はtodoの並び順を更新します。
func (h *TodoHandler) Reorder(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	var req dto.ReorderReq
	if !h.bind(c, "reorder", &req) {
		return
	}
	if err := h.uc.Reorder(c.Request.Context(), userID, req.IDs); err != nil {
		h.fail(c, "reorder", err)
		return
	}
	h.metrics.Todo("reorder", metrics.OutcomeSuccess)
	c.Status(http.StatusNoContent)
}

// Bulk は複数のtodoに一括操作を適用します。
func (h *TodoHandler) Bulk(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	var req dto.BulkReq
	if !h.bind(c, "bulk", &req) {
		return
	}
	n, err := h.uc.Bulk(c.Request.Context(), userID, usecase.BulkAction(req.Action), req.IDs)
	if err != nil {
		h.fail(c, "bulk", err)
		return
	}
	h.metrics.Todo("bulk_"+req.Action, metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, dto.BulkRes{Affected: n})
}

// user はミドルウェアが設定したユーザーIDを取得します。
func (h *TodoHandler) user(c *gin.Context) (uint, bool) {
	userID, ok := authmw.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{Error: "not logged in"})
		return 0, false
	}
	return userID, true
}

// id はパスパラメータのtodo IDを解析します。
func (h *TodoHandler) id(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (h *TodoHandler) bind(c *gin.Context, op string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Warn("todo "+op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		h.metrics.Todo(op, metrics.OutcomeRejected)
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return false
	}
	return true
}

// fail はエラーをHTTPステータスに変換します。
func (h *TodoHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrTodoNotFound):
		h.metrics.Todo(op, metrics.OutcomeRejected)
		c.JSON(http.StatusNotFound, dto.ErrorRes{Error: domain.ErrTodoNotFound.Error()})
	case domain.IsValidation(err):
		h.metrics.Todo(op, metrics.OutcomeRejected)
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: err.Error()})
	default:
		slog.Error("todo "+op+" failed", "error", err)
		h.metrics.Todo(op, metrics.OutcomeError)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal server error"})
	}
}
