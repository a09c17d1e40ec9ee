// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"todo_backend/internal/feature/auth/domain"
	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/platform/credential"
)

// dummyHash はユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// State はセッションの状態を表します。
type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateAuthenticated
)

// String はログ出力用の状態名を返します。
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot はUIに公開する認証状態のコピーです。
type Snapshot struct {
	CurrentUser     *entity.User
	Loading         bool
	Error           string
	IsAuthenticated bool
	State           State
}

// ProfileUpdate はプロフィール更新の部分入力です。nilのフィールドは変更しません。
type ProfileUpdate struct {
	Name         *string
	ProfileImage *string
}

// authUsecase は認証ビジネスロジックと現在のセッション状態を保持します。
// 操作はopMuで直列化され、状態の読み取りはmuで保護されます。
type authUsecase struct {
	users    UserRepository
	sessions SessionStore
	hasher   PasswordHasher
	newToken func() string
	now      func() time.Time

	opMu sync.Mutex

	mu      sync.RWMutex
	state   State
	current *entity.User
	lastErr string
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
// 初期状態は未認証です。Bootstrapを呼び出して保存済みセッションを読み込んでください。
func NewAuthUsecase(users UserRepository, sessions SessionStore, hasher PasswordHasher) *authUsecase {
	return &authUsecase{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		newToken: credential.NewToken,
		now:      time.Now,
		state:    StateUnauthenticated,
	}
}

// Snapshot は現在の認証状態を返します。
func (u *authUsecase) Snapshot() Snapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()

	var cur *entity.User
	if u.current != nil {
		c := *u.current
		cur = &c
	}
	return Snapshot{
		CurrentUser:     cur,
		Loading:         u.state == StateLoading,
		Error:           u.lastErr,
		IsAuthenticated: cur != nil,
		State:           u.state,
	}
}

// Bootstrap は保存済みセッションを読み込み、認証状態を確定します。
// - 有効期限切れのセッションは削除して未認証にします
// - どのユーザーのトークンとも一致しないセッションも削除します
func (u *authUsecase) Bootstrap(ctx context.Context) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.begin()

	sess, err := u.sessions.Read(ctx)
	if err != nil {
		u.settle(nil, domain.ErrUnexpected)
		return unexpected("bootstrap", err)
	}

	if sess.HasExpiry() && sess.IsExpired(u.now()) {
		slog.Info("session expired; clearing", "expires_at", sess.ExpiresAt)
		u.purge(ctx)
		u.settle(nil, nil)
		return nil
	}

	if !sess.HasToken() {
		u.settle(nil, nil)
		return nil
	}

	users, err := u.users.List(ctx)
	if err != nil {
		u.settle(nil, domain.ErrUnexpected)
		return unexpected("bootstrap", err)
	}
	for i := range users {
		if users[i].SessionToken == sess.Token {
			found := users[i]
			u.settle(&found, nil)
			return nil
		}
	}

	// トークンに一致するユーザーがいない場合は無効なセッションとして削除
	slog.Info("session token matches no user; clearing")
	u.purge(ctx)
	u.settle(nil, nil)
	return nil
}

// Signup は新規ユーザーを登録し、そのままログイン状態にします。
// メールアドレスの重複はハッシュ化の前と書き込み直前の2回確認します。
// 最終的な一意性はリポジトリのユニーク制約が保証します。
func (u *authUsecase) Signup(ctx context.Context, email, password, name string, role entity.Role) (*entity.User, error) {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	prevState, prevUser := u.begin()

	email = normalizeEmail(email)
	if role == "" {
		role = entity.RoleUser
	}
	if !role.Valid() {
		u.restore(prevState, prevUser, domain.ErrInvalidRole)
		return nil, domain.ErrInvalidRole
	}

	taken, err := u.emailTaken(ctx, email)
	if err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("signup", err)
	}
	if taken {
		u.restore(prevState, prevUser, domain.ErrUserAlreadyExists)
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("signup", err)
	}

	token := u.newToken()
	now := u.now()
	expiresAt := credential.ExpiryTimestamp(now)

	// 書き込み直前にもう一度確認
	taken, err = u.emailTaken(ctx, email)
	if err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("signup", err)
	}
	if taken {
		u.restore(prevState, prevUser, domain.ErrUserAlreadyExists)
		return nil, domain.ErrUserAlreadyExists
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
		Role:         role,
		SessionToken: token,
		IsActive:     entity.Active,
		LastLogin:    &now,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			u.restore(prevState, prevUser, domain.ErrUserAlreadyExists)
			return nil, domain.ErrUserAlreadyExists
		}
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("signup", err)
	}

	if err := u.sessions.Write(ctx, entity.Session{Token: token, ExpiresAt: expiresAt}); err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("signup", err)
	}
	u.sessions.NotifyChanged()

	u.settle(user, nil)
	out := *user
	return &out, nil
}

// Login はユーザーを認証し、新しいセッションを発行します。
// ユーザー未検出とパスワード不一致は同じエラーを返します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	prevState, prevUser := u.begin()

	email = normalizeEmail(email)
	users, err := u.users.List(ctx)
	if err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("login", err)
	}

	var found *entity.User
	for i := range users {
		if normalizeEmail(users[i].Email) == email {
			found = &users[i]
			break
		}
	}

	// タイミング攻撃防止のため、ユーザーが存在しない場合もハッシュ比較を実行
	passwordHash := dummyHash
	if found != nil {
		passwordHash = found.PasswordHash
	}
	match := u.hasher.Compare(passwordHash, password)
	if found == nil || !match {
		u.restore(prevState, prevUser, domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	if !found.Active() {
		u.restore(prevState, prevUser, domain.ErrAccountDeactivated)
		return nil, domain.ErrAccountDeactivated
	}

	token := u.newToken()
	now := u.now()
	expiresAt := credential.ExpiryTimestamp(now)

	if err := u.users.Update(ctx, found.ID, map[string]any{
		colSessionToken: token,
		colLastLogin:    now,
	}); err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("login", err)
	}

	// セッションを書き込む前に再取得し、失敗時にストアへ新トークンを残さない
	fresh, err := u.users.Get(ctx, found.ID)
	if err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("login", err)
	}

	if err := u.sessions.Write(ctx, entity.Session{Token: token, ExpiresAt: expiresAt}); err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("login", err)
	}
	u.sessions.NotifyChanged()

	u.settle(fresh, nil)
	out := *fresh
	return &out, nil
}

// Logout は現在のセッションを終了します。
// ユーザーのトークン削除は失敗してもログに残すだけで、ローカルのセッションは必ず削除します。
func (u *authUsecase) Logout(ctx context.Context) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.mu.RLock()
	cur := u.current
	u.mu.RUnlock()

	if cur != nil {
		if err := u.users.Update(ctx, cur.ID, map[string]any{colSessionToken: ""}); err != nil {
			slog.Warn("failed to clear user session token", "user_id", cur.ID, "error", err)
		}
	}

	clearErr := u.sessions.Clear(ctx)
	u.settle(nil, nil)
	u.sessions.NotifyChanged()

	if clearErr != nil {
		slog.Error("failed to clear session store", "error", clearErr)
		return unexpected("logout", clearErr)
	}
	return nil
}

// UpdateProfile は現在のユーザーの名前とプロフィール画像を更新します。
func (u *authUsecase) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*entity.User, error) {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	prevState, prevUser := u.begin()
	if prevUser == nil {
		u.restore(prevState, prevUser, domain.ErrNotLoggedIn)
		return nil, domain.ErrNotLoggedIn
	}

	fields := map[string]any{}
	if upd.Name != nil {
		fields[colName] = *upd.Name
	}
	if upd.ProfileImage != nil {
		fields[colProfileImage] = *upd.ProfileImage
	}

	if err := u.users.Update(ctx, prevUser.ID, fields); err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("update profile", err)
	}

	fresh, err := u.users.Get(ctx, prevUser.ID)
	if err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return nil, unexpected("update profile", err)
	}

	u.settle(fresh, nil)
	out := *fresh
	return &out, nil
}

// ChangePassword は現在のパスワードを確認してから新しいパスワードを保存します。
// 既存のセッショントークンは無効化しません。
func (u *authUsecase) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	prevState, prevUser := u.begin()
	if prevUser == nil {
		u.restore(prevState, prevUser, domain.ErrNotLoggedIn)
		return domain.ErrNotLoggedIn
	}

	stored, err := u.users.Get(ctx, prevUser.ID)
	if err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return unexpected("change password", err)
	}
	if !u.hasher.Compare(stored.PasswordHash, currentPassword) {
		u.restore(prevState, prevUser, domain.ErrIncorrectPassword)
		return domain.ErrIncorrectPassword
	}

	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return unexpected("change password", err)
	}
	if err := u.users.Update(ctx, prevUser.ID, map[string]any{colPasswordHash: hashed}); err != nil {
		u.restore(prevState, prevUser, domain.ErrUnexpected)
		return unexpected("change password", err)
	}

	stored.PasswordHash = hashed
	u.settle(stored, nil)
	return nil
}

// Watch はセッション変更通知を購読し、通知のたびにBootstrapを再実行します。
// ctxがキャンセルされるまでブロックします。
func (u *authUsecase) Watch(ctx context.Context) error {
	changes, unsubscribe := u.sessions.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := u.Bootstrap(ctx); err != nil {
				slog.Warn("session reload failed", "error", err)
			}
		}
	}
}

// emailTaken は正規化済みメールアドレスが既に使われているか確認します。
func (u *authUsecase) emailTaken(ctx context.Context, email string) (bool, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return false, err
	}
	for i := range users {
		if normalizeEmail(users[i].Email) == email {
			return true, nil
		}
	}
	return false, nil
}

// purge はセッションストアを削除します。失敗はログに残すだけです。
func (u *authUsecase) purge(ctx context.Context) {
	if err := u.sessions.Clear(ctx); err != nil {
		slog.Warn("failed to clear session store", "error", err)
	}
}

// begin は操作開始時にloading状態へ遷移し、直前の状態を返します。
func (u *authUsecase) begin() (State, *entity.User) {
	u.mu.Lock()
	defer u.mu.Unlock()

	prevState, prevUser := u.state, u.current
	if prevState == StateLoading {
		prevState = StateUnauthenticated
		if prevUser != nil {
			prevState = StateAuthenticated
		}
	}
	u.state = StateLoading
	u.lastErr = ""
	return prevState, prevUser
}

// settle は操作結果に応じて認証状態を確定します。
func (u *authUsecase) settle(user *entity.User, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if user != nil {
		c := *user
		u.current = &c
		u.state = StateAuthenticated
	} else {
		u.current = nil
		u.state = StateUnauthenticated
	}
	u.lastErr = errMessage(err)
}

// restore は失敗した操作の前の状態に戻し、エラーメッセージを記録します。
func (u *authUsecase) restore(state State, user *entity.User, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.state = state
	u.current = user
	u.lastErr = errMessage(err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// unexpected はストレージ障害をログに残し、汎用エラーでラップします。
func unexpected(op string, err error) error {
	slog.Error(op+" failed", "error", err)
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnexpected, err)
}
