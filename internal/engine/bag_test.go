package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetranet/tetranet/internal/dependencies/rng"
	"github.com/tetranet/tetranet/internal/model"
)

func TestRefillAddsFullPermutation(t *testing.T) {
	var b Bag
	b.Refill(rng.NewLCG(1))
	assert.Equal(t, len(Catalog), b.Len())

	b.Refill(rng.NewLCG(1))
	assert.Equal(t, 2*len(Catalog), b.Len())
}

func TestDrawAutoRefills(t *testing.T) {
	var b Bag
	tet := b.Draw(rng.NewLCG(1))
	assert.NotEmpty(t, tet.Color)
	assert.Equal(t, len(Catalog)-1, b.Len())
}

func TestSameSeedSameDrawOrder(t *testing.T) {
	var b1, b2 Bag

	for i := 0; i < 2*len(Catalog); i++ {
		// Each refill boundary restarts an identically seeded sequence.
		t1 := b1.Draw(rng.NewLCG(42))
		t2 := b2.Draw(rng.NewLCG(42))
		require.Equal(t, t1.Color, t2.Color, "draw %d diverged", i)
	}
}

func TestNoDuplicateWithinSevenDraws(t *testing.T) {
	var b Bag

	for boundary := 0; boundary < 3; boundary++ {
		seen := map[model.Cell]bool{}
		for i := 0; i < len(Catalog); i++ {
			tet := b.Draw(rng.NewLCG(int64(boundary + 7)))
			require.False(t, seen[tet.Color], "%s drawn twice within one bag", tet.Color)
			seen[tet.Color] = true
		}
		assert.Len(t, seen, len(Catalog))
	}
}
