package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the entropy source for lobby seed re-rolls. The in-game piece
// shuffle never touches it; that uses the deterministic rng package so peers
// stay in sync.
type Random interface {
	// Int63 returns a random non-negative 63-bit integer
	Int63() int64
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Int63 returns a cryptographically random non-negative 63-bit integer
func (r *CryptoRandom) Int63() int64 {
	max := new(big.Int).Lsh(big.NewInt(1), 63)
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand never fails in practice
		return 0
	}
	return result.Int64()
}
