// Package usecase はtodoリスト操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todo_backend/internal/feature/todos/domain"
	"todo_backend/internal/feature/todos/domain/entity"
)

// Status filters.
const (
	StatusAll       = "all"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// BulkAction は一括操作の種類です。
type BulkAction string

const (
	BulkComplete   BulkAction = "complete"
	BulkIncomplete BulkAction = "incomplete"
	BulkDelete     BulkAction = "delete"
)

// Filter はListの絞り込み条件です。空のフィールドは条件なしを意味します。
type Filter struct {
	Status   string
	Priority entity.Priority
	Query    string
}

// CreateInput は新規todoの入力です。
type CreateInput struct {
	Title       string
	Description string
	Priority    entity.Priority
	DueDate     *time.Time
}

// UpdateInput は部分更新の入力です。nilのフィールドは変更しません。
// ClearDueDateがtrueの場合は期限を削除します。
type UpdateInput struct {
	Title        *string
	Description  *string
	Completed    *bool
	Priority     *entity.Priority
	DueDate      *time.Time
	ClearDueDate bool
}

// todosUsecase はtodo操作のユースケースを定義します。
type todosUsecase struct {
	todos TodoRepository
}

// NewTodosUsecase はtodosUsecaseの新しいインスタンスを生成します。
func NewTodosUsecase(todos TodoRepository) *todosUsecase {
	return &todosUsecase{todos: todos}
}

// List はユーザーのtodoを位置順に返します。
// ステータス・優先度・キーワード（タイトルと説明の部分一致、大文字小文字を区別しない）で絞り込みます。
func (u *todosUsecase) List(ctx context.Context, userID uint, f Filter) ([]entity.Todo, error) {
	switch f.Status {
	case "", StatusAll, StatusActive, StatusCompleted:
	default:
		return nil, domain.ErrInvalidStatus
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}

	all, err := u.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]entity.Todo, 0, len(all))
	for _, t := range all {
		if f.Status == StatusActive && t.Completed {
			continue
		}
		if f.Status == StatusCompleted && !t.Completed {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Create は新しいtodoをリストの末尾に追加します。
func (u *todosUsecase) Create(ctx context.Context, userID uint, in CreateInput) (*entity.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}

	existing, err := u.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	position := 0
	for _, t := range existing {
		if t.Position >= position {
			position = t.Position + 1
		}
	}

	todo := &entity.Todo{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		DueDate:     in.DueDate,
		Position:    position,
	}
	if err := u.todos.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// Update はtodoを部分更新し、更新後の内容を返します。
func (u *todosUsecase) Update(ctx context.Context, userID, id uint, in UpdateInput) (*entity.Todo, error) {
	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.ErrTitleRequired
		}
		fields[colTitle] = title
	}
	if in.Description != nil {
		fields[colDescription] = *in.Description
	}
	if in.Completed != nil {
		fields[colCompleted] = *in.Completed
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, domain.ErrInvalidPriority
		}
		fields[colPriority] = *in.Priority
	}
	switch {
	case in.ClearDueDate:
		fields[colDueDate] = nil
	case in.DueDate != nil:
		fields[colDueDate] = *in.DueDate
	}

	if len(fields) > 0 {
		if err := u.todos.Update(ctx, userID, id, fields); err != nil {
			return nil, fmt.Errorf("update todo %d: %w", id, err)
		}
	}

	todo, err := u.todos.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	return todo, nil
}

// Delete はtodoを削除します。
func (u *todosUsecase) Delete(ctx context.Context, userID, id uint) error {
	if err := u.todos.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	return nil
}

// Reorder は指定された順序でtodoの位置を振り直します。
func (u *todosUsecase) Reorder(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return domain.ErrEmptySelection
	}
	if err := u.todos.Reorder(ctx, userID, dedupe(ids)); err != nil {
		return fmt.Errorf("reorder todos: %w", err)
	}
	return nil
}

// Bulk は複数のtodoに同じ操作を適用し、対象件数を返します。
// 他のユーザーのtodoや存在しないIDは無視されます。
func (u *todosUsecase) Bulk(ctx context.Context, userID uint, action BulkAction, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.ErrEmptySelection
	}
	ids = dedupe(ids)

	var (
		n   int64
		err error
	)
	switch action {
	case BulkComplete:
		n, err = u.todos.BulkUpdate(ctx, userID, ids, map[string]any{colCompleted: true})
	case BulkIncomplete:
		n, err = u.todos.BulkUpdate(ctx, userID, ids, map[string]any{colCompleted: false})
	case BulkDelete:
		n, err = u.todos.BulkDelete(ctx, userID, ids)
	default:
		return 0, domain.ErrInvalidBulkAction
	}
	if err != nil {
		return 0, fmt.Errorf("bulk %s: %w", action, err)
	}
	return n, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
