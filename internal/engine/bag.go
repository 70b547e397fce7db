package engine

import "github.com/tetranet/tetranet/internal/dependencies/rng"

// Bag is a player's queue of pending catalog indices, consumed front to
// back and refilled with a fresh 7-permutation whenever it runs dry.
type Bag struct {
	indices []int
}

// Len returns the number of queued indices.
func (b *Bag) Len() int {
	return len(b.indices)
}

// Refill appends a full Fisher-Yates permutation of the catalog indices,
// driven by seq. A refill never introduces duplicates: each of the seven
// indices appears exactly once per boundary.
func (b *Bag) Refill(seq rng.Sequence) {
	indices := make([]int, len(Catalog))
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := int(seq.Float64() * float64(i+1))
		indices[i], indices[j] = indices[j], indices[i]
	}
	b.indices = append(b.indices, indices...)
}

// Draw pops the front index, refilling from seq first when the bag is
// empty, and returns its catalog tetromino.
func (b *Bag) Draw(seq rng.Sequence) Tetromino {
	if len(b.indices) == 0 {
		b.Refill(seq)
	}
	idx := b.indices[0]
	b.indices = b.indices[1:]
	return Catalog[idx]
}
