// Package session owns the client session entries (token, expiry and the
// auto-provisioning flag) and the change notifications around them.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todo_backend/internal/feature/auth/domain/entity"
)

// Keys of the session entries.
const (
	KeyToken       = "auth_token"
	KeyExpiry      = "auth_token_expiry"
	KeyInitialized = "admin_auto_login_initialized"
)

// KeyValueStore is the storage the session entries live in.
type KeyValueStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes every entry as one unit: readers see all of them or none.
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// ChangeFeed delivers change signals written by other processes.
// A process never receives its own writes through the feed.
type ChangeFeed interface {
	// Listen blocks, calling onChange for every remote change, until ctx is done.
	Listen(ctx context.Context, onChange func()) error
}

// Service is the only reader and writer of the session entries.
type Service struct {
	kv KeyValueStore

	mu   sync.Mutex
	subs map[uint64]chan struct{}
	next uint64
}

// NewService creates a Service over kv.
func NewService(kv KeyValueStore) *Service {
	return &Service{
		kv:   kv,
		subs: make(map[uint64]chan struct{}),
	}
}

// Read returns the stored session. Missing entries leave the matching field empty.
// An expiry that cannot be parsed is reported as the Unix epoch, i.e. expired.
func (s *Service) Read(ctx context.Context) (entity.Session, error) {
	var sess entity.Session

	token, ok, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		return sess, fmt.Errorf("failed to read session token: %w", err)
	}
	if ok {
		sess.Token = token
	}

	raw, ok, err := s.kv.Get(ctx, KeyExpiry)
	if err != nil {
		return sess, fmt.Errorf("failed to read session expiry: %w", err)
	}
	if ok && raw != "" {
		exp, perr := time.Parse(time.RFC3339Nano, raw)
		if perr != nil {
			exp = time.Unix(0, 0).UTC()
		}
		sess.ExpiresAt = exp
	}
	return sess, nil
}

// Write stores the token and expiry. The expiry is written in ISO-8601 (RFC 3339) UTC.
func (s *Service) Write(ctx context.Context, sess entity.Session) error {
	err := s.kv.SetMany(ctx, map[string]string{
		KeyToken:  sess.Token,
		KeyExpiry: sess.ExpiresAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the token and expiry entries.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyToken, KeyExpiry); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Initialized reports whether auto-provisioning already ran.
func (s *Service) Initialized(ctx context.Context) (bool, error) {
	v, ok, err := s.kv.Get(ctx, KeyInitialized)
	if err != nil {
		return false, fmt.Errorf("failed to read init flag: %w", err)
	}
	return ok && v == "true", nil
}

// MarkInitialized records that auto-provisioning ran.
func (s *Service) MarkInitialized(ctx context.Context) error {
	if err := s.kv.Set(ctx, KeyInitialized, "true"); err != nil {
		return fmt.Errorf("failed to write init flag: %w", err)
	}
	return nil
}

// Subscribe registers for change notifications. Signals are coalesced:
// a subscriber that has not drained its channel sees one pending signal.
// The returned func unsubscribes and closes the channel.
func (s *Service) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// NotifyChanged signals every subscriber that the session entries changed.
// It never blocks.
func (s *Service) NotifyChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Follow relays changes from feed to the local subscribers until ctx is done.
func (s *Service) Follow(ctx context.Context, feed ChangeFeed) error {
	return feed.Listen(ctx, s.NotifyChanged)
}
