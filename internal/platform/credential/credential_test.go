package credential

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDigest(t *testing.T) {
	t.Parallel()

	// sha256("password")
	assert.Equal(t, "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", Digest("password"))
	assert.Len(t, Digest(""), 64)
	assert.Equal(t, Digest("same"), Digest("same"))
	assert.NotEqual(t, Digest("a"), Digest("b"))
}

func TestNewToken_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		tok := NewToken()
		require.NotEmpty(t, tok)
		_, dup := seen[tok]
		require.False(t, dup, "token repeated: %s", tok)
		seen[tok] = struct{}{}
	}
}

func TestExpiryTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), ExpiryTimestamp(now))
}

func TestIsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{name: "absent", ts: time.Time{}, want: true},
		{name: "past", ts: now.Add(-time.Second), want: true},
		{name: "future", ts: now.Add(time.Hour), want: false},
		{name: "exactly now", ts: now, want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpired(tt.ts, now))
		})
	}
}

func TestDigestHasher(t *testing.T) {
	t.Parallel()

	h := DigestHasher{}
	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.Equal(t, Digest("secret"), hash)
	assert.True(t, h.Compare(hash, "secret"))
	assert.False(t, h.Compare(hash, "Secret"))
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{Cost: bcrypt.MinCost}
	first, err := h.Hash("secret")
	require.NoError(t, err)
	second, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "bcrypt hashes must be salted")
	assert.True(t, h.Compare(first, "secret"))
	assert.True(t, h.Compare(second, "secret"))
	assert.False(t, h.Compare(first, "wrong"))
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{Cost: bcrypt.MinCost}
	long := strings.Repeat("p", 80)

	hash, err := h.Hash(long)
	require.NoError(t, err, "passwords over 72 bytes must hash")
	assert.True(t, h.Compare(hash, long))
	// bcrypt alone would ignore everything past byte 72
	assert.False(t, h.Compare(hash, strings.Repeat("p", 72)+"qqqqqqqq"))
}

func TestMultiHasher(t *testing.T) {
	t.Parallel()

	m := NewMultiHasher(bcrypt.MinCost)

	hash, err := m.Hash("secret")
	require.NoError(t, err)
	assert.Contains(t, hash, "$2")
	assert.True(t, m.Compare(hash, "secret"))

	// legacy digest records still verify
	legacy := Digest("old-secret")
	assert.True(t, m.Compare(legacy, "old-secret"))
	assert.False(t, m.Compare(legacy, "secret"))
}
