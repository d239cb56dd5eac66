package dice

import (
	"crypto/rand"
	"math/big"
)

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics if n <= 0 or crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// FixedSource replays a scripted sequence of Intn results, wrapping around when
// exhausted. It is intended for tests and deterministic replays.
//
// Each value is reduced modulo n so callers can script die faces directly as
// face-1 values.
type FixedSource struct {
	Values []int
	next   int
}

// Intn returns the next scripted value modulo n.
//
// Precondition: len(f.Values) > 0; n > 0.
func (f *FixedSource) Intn(n int) int {
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v % n
}
