package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/platform/credential"
)

// Environment variables that enable administrator auto-provisioning.
const (
	EnvKeyAdminName  = "ADMIN_NAME"
	EnvKeyAdminEmail = "ADMIN_EMAIL"
)

// ProvisionConfig names the pre-created administrator to log in automatically.
type ProvisionConfig struct {
	AdminName  string
	AdminEmail string
}

// LoadProvisionConfigFromEnv reads the administrator settings from the environment.
func LoadProvisionConfigFromEnv() ProvisionConfig {
	return ProvisionConfig{
		AdminName:  os.Getenv(EnvKeyAdminName),
		AdminEmail: os.Getenv(EnvKeyAdminEmail),
	}
}

// Enabled reports whether both administrator settings are present.
func (c ProvisionConfig) Enabled() bool {
	return strings.TrimSpace(c.AdminName) != "" && strings.TrimSpace(c.AdminEmail) != ""
}

// ProvisionSessionStore is the session service plus the one-time flag.
type ProvisionSessionStore interface {
	SessionStore
	Initialized(ctx context.Context) (bool, error)
	MarkInitialized(ctx context.Context) error
}

// provisionUsecase logs the configured administrator in once, without credentials.
type provisionUsecase struct {
	users    UserRepository
	sessions ProvisionSessionStore
	cfg      ProvisionConfig
	newToken func() string
	now      func() time.Time
}

// NewProvisionUsecase creates a new provisionUsecase.
func NewProvisionUsecase(users UserRepository, sessions ProvisionSessionStore, cfg ProvisionConfig) *provisionUsecase {
	return &provisionUsecase{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		newToken: credential.NewToken,
		now:      time.Now,
	}
}

// Run establishes a session for the administrator if it has not been done yet.
// It reports whether a session was written. Nothing happens when the flag is already
// set, when the feature is not configured, or when the administrator does not exist
// yet; the last case is retried on the next start.
func (p *provisionUsecase) Run(ctx context.Context) (bool, error) {
	done, err := p.sessions.Initialized(ctx)
	if err != nil {
		return false, fmt.Errorf("provision: %w", err)
	}
	if done {
		return false, nil
	}

	if !p.cfg.Enabled() {
		return false, nil
	}

	email := normalizeEmail(p.cfg.AdminEmail)
	users, err := p.users.List(ctx)
	if err != nil {
		return false, fmt.Errorf("provision: %w", err)
	}

	var admin *entity.User
	for i := range users {
		if normalizeEmail(users[i].Email) == email {
			admin = &users[i]
			break
		}
	}
	if admin == nil {
		slog.Info("admin user not found yet; skipping auto-login", "email", email)
		return false, nil
	}

	token := admin.SessionToken
	if token == "" {
		token = p.newToken()
		if err := p.users.Update(ctx, admin.ID, map[string]any{colSessionToken: token}); err != nil {
			return false, fmt.Errorf("provision: %w", err)
		}
	}

	sess := entity.Session{Token: token, ExpiresAt: credential.ExpiryTimestamp(p.now())}
	if err := p.sessions.Write(ctx, sess); err != nil {
		return false, fmt.Errorf("provision: %w", err)
	}
	if err := p.sessions.MarkInitialized(ctx); err != nil {
		return false, fmt.Errorf("provision: %w", err)
	}
	p.sessions.NotifyChanged()

	slog.Info("admin auto-login established", "email", email, "name", p.cfg.AdminName)
	return true, nil
}
