package rng

// Sequence is a restartable stream of pseudo-random floats in [0, 1).
// Two sequences built from the same seed must produce identical values;
// every player in a lobby relies on this to draw the same piece order.
type Sequence interface {
	Float64() float64
}

// Linear congruential recurrence constants. These are contractual: clients
// reproducing the shuffle must see the exact same values, so they cannot be
// swapped for math/rand.
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

// LCG is a linear congruential generator over a 32-bit state.
type LCG struct {
	state uint64
}

// NewLCG creates a generator seeded with the given integer.
func NewLCG(seed int64) *LCG {
	return &LCG{state: uint64(seed) % lcgModulus}
}

// Float64 advances the recurrence and returns state'/2^32 in [0, 1).
func (l *LCG) Float64() float64 {
	l.state = (l.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(l.state) / float64(lcgModulus)
}

var _ Sequence = (*LCG)(nil)
