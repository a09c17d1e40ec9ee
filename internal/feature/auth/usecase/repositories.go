package usecase

import (
	"context"

	"todo_backend/internal/feature/auth/domain/entity"
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// List returns every user.
	List(ctx context.Context) ([]entity.User, error)

	// Create persists a new user and fills in its ID and timestamps.
	// It returns domain.ErrUserAlreadyExists if the email is taken.
	Create(ctx context.Context, user *entity.User) error

	// Get retrieves a user by ID.
	Get(ctx context.Context, id uint) (*entity.User, error)

	// Update applies a partial update keyed by column name.
	Update(ctx context.Context, id uint, fields map[string]any) error
}

// SessionStore is the session service as seen by the auth usecases.
type SessionStore interface {
	Read(ctx context.Context) (entity.Session, error)
	Write(ctx context.Context, sess entity.Session) error
	Clear(ctx context.Context) error

	// Subscribe returns a channel signalled on every session change and an unsubscribe func.
	Subscribe() (<-chan struct{}, func())

	// NotifyChanged tells every subscriber in this process that the session changed.
	NotifyChanged()
}

// PasswordHasher hashes passwords and compares candidates against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// Column names used for partial updates.
const (
	colSessionToken = "session_token"
	colLastLogin    = "last_login"
	colPasswordHash = "password_hash"
	colName         = "name"
	colProfileImage = "profile_image"
)
