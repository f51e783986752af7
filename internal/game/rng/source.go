// Package rng provides the injectable randomness abstraction for the Delve
// event engine. Pacing rolls, weighted template draws, and effect-magnitude
// rolls all draw from a Source so that tests and replays can substitute a
// seeded provider.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

// Source is the randomness provider for the event engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int

	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in their
// documented ranges.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. This is the
// production default.
//
// Postcondition: Every value returned by Intn is in [0, n); every value
// returned by Float64 is in [0.0, 1.0).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
// Panics with "rng: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure random float64 in [0.0, 1.0)
// with 53 bits of precision.
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	// Take the top 53 bits so the result is uniform over [0, 1).
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}
