package mocks

import (
	"github.com/tetranet/tetranet/internal/dependencies/random"
)

// MockRandom returns queued values instead of real entropy, so tests can pin
// the lobby seed integers a run will produce.
type MockRandom struct {
	// Int63Results is a queue of results to return from Int63
	Int63Results []int64
	int63Index   int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Int63 returns the next queued result, or 0 if none remaining
func (r *MockRandom) Int63() int64 {
	if r.int63Index >= len(r.Int63Results) {
		return 0
	}
	result := r.Int63Results[r.int63Index]
	r.int63Index++
	return result
}

// QueueInt63 adds values to the Int63 result queue
func (r *MockRandom) QueueInt63(values ...int64) {
	r.Int63Results = append(r.Int63Results, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.Int63Results = nil
	r.int63Index = 0
}
