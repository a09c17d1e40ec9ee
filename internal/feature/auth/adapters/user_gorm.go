// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo_backend/internal/feature/auth/domain"
	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/usecase"
	"todo_backend/internal/platform/store"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// 汎用のstore.Collectionの上に、ユーザー固有のエラー変換を加えます。
type userGorm struct {
	users *store.Collection[entity.User]
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{users: store.NewCollection[entity.User](db, "users")}
}

// List は全ユーザーをID順に返します。
func (r *userGorm) List(ctx context.Context) ([]entity.User, error) {
	return r.users.List(ctx)
}

// Create はユーザーをデータベースに追加します。
// メールアドレスのユニーク制約違反はdomain.ErrUserAlreadyExistsに変換します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// Get はIDでユーザーを取得します。
func (r *userGorm) Get(ctx context.Context, id uint) (*entity.User, error) {
	u, err := r.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

// Update はカラム名をキーとする部分更新を行います。
func (r *userGorm) Update(ctx context.Context, id uint, fields map[string]any) error {
	return r.users.Update(ctx, id, fields)
}
