// Package dto はtodosフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"todo_backend/internal/feature/todos/domain/entity"
)

// CreateTodoReq is the body of POST /todos.
type CreateTodoReq struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTodoReq is the body of PATCH /todos/:id. Omitted fields are left unchanged.
type UpdateTodoReq struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Completed    *bool      `json:"completed"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"dueDate"`
	ClearDueDate bool       `json:"clearDueDate"`
}

// ReorderReq is the body of POST /todos/reorder.
type ReorderReq struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// BulkReq is the body of POST /todos/bulk.
type BulkReq struct {
	Action string `json:"action" binding:"required,oneof=complete incomplete delete"`
	IDs    []uint `json:"ids" binding:"required,min=1"`
}

// BulkRes reports how many todos an operation touched.
type BulkRes struct {
	Affected int64 `json:"affected"`
}

// TodoRes is the JSON view of a todo.
type TodoRes struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TodoResFromEntity converts t.
func TodoResFromEntity(t entity.Todo) TodoRes {
	return TodoRes{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Position:    t.Position,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ErrorRes is the body of every failed todo request.
type ErrorRes struct {
	Error string `json:"error"`
}
