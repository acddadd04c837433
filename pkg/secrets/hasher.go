// pkg/secrets/hasher.go
package secrets

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes tenant secrets and verifies plaintext against stored digests.
// Verify never fails loudly: a malformed digest simply does not match.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

const (
	AlgoBcrypt   = "bcrypt"
	AlgoArgon2id = "argon2id"

	DefaultBcryptCost = 10
)

// Bcrypt implements Hasher with golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(h), nil
}

func (b *Bcrypt) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// Multi hashes with a primary algorithm and verifies by digest prefix, so
// bcrypt and argon2id records may coexist in one store.
type Multi struct {
	primary Hasher
	bcrypt  *Bcrypt
	argon   *Argon2id
}

// New returns a Multi hasher whose primary algorithm is algo.
func New(algo string, bcryptCost int) (*Multi, error) {
	m := &Multi{bcrypt: NewBcrypt(bcryptCost), argon: NewArgon2id(DefaultArgon2Params())}
	switch algo {
	case "", AlgoBcrypt:
		m.primary = m.bcrypt
	case AlgoArgon2id:
		m.primary = m.argon
	default:
		return nil, fmt.Errorf("unknown secret hash algorithm %q", algo)
	}
	return m, nil
}

func (m *Multi) Hash(plain string) (string, error) { return m.primary.Hash(plain) }

func (m *Multi) Verify(plain, digest string) bool {
	switch {
	case strings.HasPrefix(digest, argon2Prefix):
		return m.argon.Verify(plain, digest)
	case strings.HasPrefix(digest, "$2"):
		return m.bcrypt.Verify(plain, digest)
	default:
		return false
	}
}
