package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo_backend/internal/feature/todos/domain"
	"todo_backend/internal/feature/todos/domain/entity"
)

// mockTodoRepository はテスト用のTodoRepositoryモック実装です。
type mockTodoRepository struct {
	ListByUserFunc func(ctx context.Context, userID uint) ([]entity.Todo, error)
	CreateFunc     func(ctx context.Context, todo *entity.Todo) error
	GetFunc        func(ctx context.Context, userID, id uint) (*entity.Todo, error)
	UpdateFunc     func(ctx context.Context, userID, id uint, fields map[string]any) error
	DeleteFunc     func(ctx context.Context, userID, id uint) error
	ReorderFunc    func(ctx context.Context, userID uint, ids []uint) error
	BulkUpdateFunc func(ctx context.Context, userID uint, ids []uint, fields map[string]any) (int64, error)
	BulkDeleteFunc func(ctx context.Context, userID uint, ids []uint) (int64, error)
}

func (m *mockTodoRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Todo, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockTodoRepository) Create(ctx context.Context, todo *entity.Todo) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, todo)
	}
	todo.ID = 1
	return nil
}

func (m *mockTodoRepository) Get(ctx context.Context, userID, id uint) (*entity.Todo, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, id)
	}
	return &entity.Todo{ID: id, UserID: userID}, nil
}

func (m *mockTodoRepository) Update(ctx context.Context, userID, id uint, fields map[string]any) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, id, fields)
	}
	return nil
}

func (m *mockTodoRepository) Delete(ctx context.Context, userID, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

func (m *mockTodoRepository) Reorder(ctx context.Context, userID uint, ids []uint) error {
	if m.ReorderFunc != nil {
		return m.ReorderFunc(ctx, userID, ids)
	}
	return nil
}

func (m *mockTodoRepository) BulkUpdate(ctx context.Context, userID uint, ids []uint, fields map[string]any) (int64, error) {
	if m.BulkUpdateFunc != nil {
		return m.BulkUpdateFunc(ctx, userID, ids, fields)
	}
	return int64(len(ids)), nil
}

func (m *mockTodoRepository) BulkDelete(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if m.BulkDeleteFunc != nil {
		return m.BulkDeleteFunc(ctx, userID, ids)
	}
	return int64(len(ids)), nil
}

func sampleTodos() []entity.Todo {
	return []entity.Todo{
		{ID: 1, Title: "Buy milk", Priority: entity.PriorityLow, Position: 0},
		{ID: 2, Title: "Write report", Description: "quarterly NUMBERS", Priority: entity.PriorityHigh, Position: 1, Completed: true},
		{ID: 3, Title: "Call plumber", Priority: entity.PriorityHigh, Position: 2},
	}
}

func TestTodosUsecase_List(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantIDs []uint
		wantErr error
	}{
		{name: "no filter", filter: Filter{}, wantIDs: []uint{1, 2, 3}},
		{name: "all", filter: Filter{Status: StatusAll}, wantIDs: []uint{1, 2, 3}},
		{name: "active", filter: Filter{Status: StatusActive}, wantIDs: []uint{1, 3}},
		{name: "completed", filter: Filter{Status: StatusCompleted}, wantIDs: []uint{2}},
		{name: "priority", filter: Filter{Priority: entity.PriorityHigh}, wantIDs: []uint{2, 3}},
		{name: "query matches description case-insensitively", filter: Filter{Query: " numbers "}, wantIDs: []uint{2}},
		{name: "combined", filter: Filter{Status: StatusActive, Priority: entity.PriorityHigh, Query: "call"}, wantIDs: []uint{3}},
		{name: "invalid status", filter: Filter{Status: "done"}, wantErr: domain.ErrInvalidStatus},
		{name: "invalid priority", filter: Filter{Priority: "urgent"}, wantErr: domain.ErrInvalidPriority},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			uc := NewTodosUsecase(&mockTodoRepository{
				ListByUserFunc: func(ctx context.Context, userID uint) ([]entity.Todo, error) {
					return sampleTodos(), nil
				},
			})

			got, err := uc.List(context.Background(), 1, tt.filter)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			ids := make([]uint, 0, len(got))
			for _, td := range got {
				ids = append(ids, td.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("repository error", func(t *testing.T) {
		repoErr := errors.New("database error")
		uc := NewTodosUsecase(&mockTodoRepository{
			ListByUserFunc: func(ctx context.Context, userID uint) ([]entity.Todo, error) { return nil, repoErr },
		})
		_, err := uc.List(context.Background(), 1, Filter{})
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestTodosUsecase_Create(t *testing.T) {
	t.Run("appends after the highest position with default priority", func(t *testing.T) {
		var created *entity.Todo
		uc := NewTodosUsecase(&mockTodoRepository{
			ListByUserFunc: func(ctx context.Context, userID uint) ([]entity.Todo, error) { return sampleTodos(), nil },
			CreateFunc: func(ctx context.Context, todo *entity.Todo) error {
				created = todo
				todo.ID = 10
				return nil
			},
		})

		todo, err := uc.Create(context.Background(), 7, CreateInput{Title: "  New task  "})
		require.NoError(t, err)
		assert.Equal(t, uint(10), todo.ID)
		assert.Equal(t, uint(7), created.UserID)
		assert.Equal(t, "New task", created.Title)
		assert.Equal(t, entity.PriorityMedium, created.Priority)
		assert.Equal(t, 3, created.Position)
	})

	t.Run("empty title", func(t *testing.T) {
		uc := NewTodosUsecase(&mockTodoRepository{})
		_, err := uc.Create(context.Background(), 1, CreateInput{Title: "   "})
		assert.ErrorIs(t, err, domain.ErrTitleRequired)
	})

	t.Run("invalid priority", func(t *testing.T) {
		uc := NewTodosUsecase(&mockTodoRepository{})
		_, err := uc.Create(context.Background(), 1, CreateInput{Title: "x", Priority: "urgent"})
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)
	})
}

func TestTodosUsecase_Update(t *testing.T) {
	t.Run("builds the partial update", func(t *testing.T) {
		var got map[string]any
		uc := NewTodosUsecase(&mockTodoRepository{
			UpdateFunc: func(ctx context.Context, userID, id uint, fields map[string]any) error {
				got = fields
				return nil
			},
		})

		title := " Renamed "
		done := true
		high := entity.PriorityHigh
		_, err := uc.Update(context.Background(), 1, 2, UpdateInput{Title: &title, Completed: &done, Priority: &high, ClearDueDate: true})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"title":     "Renamed",
			"completed": true,
			"priority":  entity.PriorityHigh,
			"due_date":  nil,
		}, got)
	})

	t.Run("sets a due date", func(t *testing.T) {
		due := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
		var got map[string]any
		uc := NewTodosUsecase(&mockTodoRepository{
			UpdateFunc: func(ctx context.Context, userID, id uint, fields map[string]any) error {
				got = fields
				return nil
			},
		})
		_, err := uc.Update(context.Background(), 1, 2, UpdateInput{DueDate: &due})
		require.NoError(t, err)
		assert.Equal(t, due, got["due_date"])
	})

	t.Run("empty input only reads", func(t *testing.T) {
		updated := false
		uc := NewTodosUsecase(&mockTodoRepository{
			UpdateFunc: func(ctx context.Context, userID, id uint, fields map[string]any) error {
				updated = true
				return nil
			},
		})
		todo, err := uc.Update(context.Background(), 1, 2, UpdateInput{})
		require.NoError(t, err)
		assert.False(t, updated)
		assert.Equal(t, uint(2), todo.ID)
	})

	t.Run("blank title", func(t *testing.T) {
		uc := NewTodosUsecase(&mockTodoRepository{})
		blank := ""
		_, err := uc.Update(context.Background(), 1, 2, UpdateInput{Title: &blank})
		assert.ErrorIs(t, err, domain.ErrTitleRequired)
	})

	t.Run("not found", func(t *testing.T) {
		uc := NewTodosUsecase(&mockTodoRepository{
			UpdateFunc: func(ctx context.Context, userID, id uint, fields map[string]any) error {
				return domain.ErrTodoNotFound
			},
		})
		done := true
		_, err := uc.Update(context.Background(), 1, 99, UpdateInput{Completed: &done})
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	})
}

func TestTodosUsecase_Reorder(t *testing.T) {
	var got []uint
	uc := NewTodosUsecase(&mockTodoRepository{
		ReorderFunc: func(ctx context.Context, userID uint, ids []uint) error {
			got = ids
			return nil
		},
	})

	require.NoError(t, uc.Reorder(context.Background(), 1, []uint{3, 1, 3, 2}))
	assert.Equal(t, []uint{3, 1, 2}, got, "duplicates should be dropped")

	assert.ErrorIs(t, uc.Reorder(context.Background(), 1, nil), domain.ErrEmptySelection)
}

func TestTodosUsecase_Bulk(t *testing.T) {
	var fields map[string]any
	deleted := false
	uc := NewTodosUsecase(&mockTodoRepository{
		BulkUpdateFunc: func(ctx context.Context, userID uint, ids []uint, f map[string]any) (int64, error) {
			fields = f
			return int64(len(ids)), nil
		},
		BulkDeleteFunc: func(ctx context.Context, userID uint, ids []uint) (int64, error) {
			deleted = true
			return 1, nil
		},
	})
	ctx := context.Background()

	n, err := uc.Bulk(ctx, 1, BulkComplete, []uint{1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, map[string]any{"completed": true}, fields)

	_, err = uc.Bulk(ctx, 1, BulkIncomplete, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"completed": false}, fields)

	n, err = uc.Bulk(ctx, 1, BulkDelete, []uint{1})
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, int64(1), n)

	_, err = uc.Bulk(ctx, 1, "archive", []uint{1})
	assert.ErrorIs(t, err, domain.ErrInvalidBulkAction)

	_, err = uc.Bulk(ctx, 1, BulkDelete, nil)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}
