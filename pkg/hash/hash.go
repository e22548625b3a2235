package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when an empty plaintext is passed to Hash.
var ErrEmptyPassword = errors.New("hash: empty password")

// DefaultCost is the bcrypt cost used when no explicit cost is configured.
const DefaultCost = 12

// Hasher derives and verifies salted bcrypt digests. The cost factor only
// affects newly created digests; stored digests embed their own cost and salt,
// so changing it never invalidates existing credentials.
type Hasher struct {
	cost int
}

// New returns a Hasher with the given bcrypt cost. Out-of-range costs fall
// back to DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash generates a fresh salted digest for plain.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches digest. A malformed digest yields
// false rather than an error, so callers cannot be used as a format oracle.
func (h *Hasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
