package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"todo_backend/internal/feature/auth/domain"
	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/platform/credential"
	"todo_backend/internal/platform/session"
)

var errUserNotFound = errors.New("user not found")

// fakeUsers is an in-memory UserRepository with optional injected failures.
type fakeUsers struct {
	mu     sync.Mutex
	users  []entity.User
	nextID uint

	listErr   error
	createErr error
	getErr    error
	updateErr error

	// ListFunc overrides List when set.
	ListFunc func(ctx context.Context) ([]entity.User, error)
}

var _ UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) List(ctx context.Context) ([]entity.User, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]entity.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	f.nextID++
	now := time.Now()
	u.ID = f.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id uint) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.ID == id {
			c := u
			return &c, nil
		}
	}
	return nil, errUserNotFound
}

func (f *fakeUsers) Update(_ context.Context, id uint, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.users {
		if f.users[i].ID != id {
			continue
		}
		u := &f.users[i]
		for k, v := range fields {
			switch k {
			case colSessionToken:
				u.SessionToken = v.(string)
			case colLastLogin:
				t := v.(time.Time)
				u.LastLogin = &t
			case colPasswordHash:
				u.PasswordHash = v.(string)
			case colName:
				u.Name = v.(string)
			case colProfileImage:
				u.ProfileImage = v.(string)
			}
		}
		u.UpdatedAt = time.Now()
		return nil
	}
	return errUserNotFound
}

// seed inserts a user directly, bypassing the usecase.
func (f *fakeUsers) seed(u entity.User) entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	if u.IsActive == "" {
		u.IsActive = entity.Active
	}
	f.users = append(f.users, u)
	return u
}

func (f *fakeUsers) byID(id uint) entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u
		}
	}
	return entity.User{}
}

// failingKV is a session.KeyValueStore whose every call fails.
type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error         { return f.err }
func (f failingKV) SetMany(context.Context, map[string]string) error  { return f.err }
func (f failingKV) Delete(context.Context, ...string) error           { return f.err }

// memKV is an in-memory session.KeyValueStore.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

var _ session.KeyValueStore = (*memKV)(nil)

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(ctx context.Context, key, value string) error {
	return m.SetMany(ctx, map[string]string{key: value})
}

func (m *memKV) SetMany(_ context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// newTestUsecase wires an authUsecase over fresh in-memory stores.
func newTestUsecase() (*authUsecase, *fakeUsers, *session.Service, *memKV) {
	users := &fakeUsers{}
	kv := newMemKV()
	svc := session.NewService(kv)
	return NewAuthUsecase(users, svc, credential.DigestHasher{}), users, svc, kv
}
