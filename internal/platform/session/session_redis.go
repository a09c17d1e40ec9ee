package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRedis implements KeyValueStore and ChangeFeed using Redis.
// Every Set, SetMany and Delete call is announced once, after it completed,
// on the "<prefix>:changed" channel tagged with this instance's origin, so
// other processes can reload their session.
type SessionRedis struct {
	client *redis.Client
	prefix string
	origin string
}

var (
	_ KeyValueStore = (*SessionRedis)(nil)
	_ ChangeFeed    = (*SessionRedis)(nil)
)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client *redis.Client, prefix string) *SessionRedis {
	if prefix == "" {
		prefix = "session"
	}
	return &SessionRedis{
		client: client,
		prefix: prefix,
		origin: uuid.NewString(),
	}
}

// key returns the Redis key for a session entry.
func (r *SessionRedis) key(k string) string {
	return fmt.Sprintf("%s:%s", r.prefix, k)
}

// channel returns the pub/sub channel for change announcements.
func (r *SessionRedis) channel() string {
	return fmt.Sprintf("%s:changed", r.prefix)
}

// Get implements KeyValueStore.
func (r *SessionRedis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// Set implements KeyValueStore. Entries never expire on their own;
// session expiry is checked by the reader.
func (r *SessionRedis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return err
	}
	r.announce(ctx)
	return nil
}

// SetMany implements KeyValueStore. The entries are written in one MULTI/EXEC
// transaction and announced once.
func (r *SessionRedis) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.announce(ctx)
	return nil
}

// Delete implements KeyValueStore.
func (r *SessionRedis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return err
	}
	r.announce(ctx)
	return nil
}

// announce publishes a change signal. Best effort: the write already succeeded.
func (r *SessionRedis) announce(ctx context.Context) {
	if err := r.client.Publish(ctx, r.channel(), r.origin).Err(); err != nil {
		slog.Warn("session change publish failed", "channel", r.channel(), "error", err)
	}
}

// Listen implements ChangeFeed.
func (r *SessionRedis) Listen(ctx context.Context, onChange func()) error {
	sub := r.client.Subscribe(ctx, r.channel())
	defer func() { _ = sub.Close() }()

	// wait for the subscription to be confirmed before delivering anything
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel(), err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if msg.Payload == r.origin {
				continue
			}
			onChange()
		}
	}
}
