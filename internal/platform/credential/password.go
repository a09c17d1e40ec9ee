package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Digest returns the lower-case hex SHA-256 of the UTF-8 bytes of password.
// It is unsalted and fast, so it is only suitable for equality checks
// against records that were stored that way.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// DigestHasher stores passwords as plain SHA-256 digests.
type DigestHasher struct{}

// Hash returns the digest of password.
func (DigestHasher) Hash(password string) (string, error) {
	return Digest(password), nil
}

// Compare reports whether hash is the digest of password.
func (DigestHasher) Compare(hash, password string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(Digest(password))) == 1
}

// BcryptHasher stores passwords as salted bcrypt hashes.
// bcrypt reads at most 72 bytes, so the password is first reduced to the
// base64 of its SHA-256 (44 bytes) and passwords of any length are accepted.
type BcryptHasher struct {
	// Cost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	Cost int
}

// Hash returns a new bcrypt hash of password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether password matches the bcrypt hash.
func (BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// MultiHasher hashes with bcrypt and verifies both bcrypt hashes and
// legacy SHA-256 digests, so records written before the switch keep working.
type MultiHasher struct {
	Primary BcryptHasher
	Legacy  DigestHasher
}

// NewMultiHasher returns a MultiHasher using the given bcrypt cost.
func NewMultiHasher(cost int) *MultiHasher {
	return &MultiHasher{Primary: BcryptHasher{Cost: cost}}
}

// Hash hashes with the primary (bcrypt) hasher.
func (m *MultiHasher) Hash(password string) (string, error) {
	return m.Primary.Hash(password)
}

// Compare picks the hasher matching the stored format.
func (m *MultiHasher) Compare(hash, password string) bool {
	if strings.HasPrefix(hash, "$2") {
		return m.Primary.Compare(hash, password)
	}
	return m.Legacy.Compare(hash, password)
}
