package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/testutil"
)

func newGame(seed string) *model.Game {
	return &model.Game{
		Seed:  model.Seed(seed),
		Grids: make(map[model.ConnID]model.Grid),
	}
}

func TestAddAndGet(t *testing.T) {
	r := New(testutil.NopLogger())

	require.NoError(t, r.Add(newGame("Alice_room")))

	g, ok := r.Get("Alice_room")
	require.True(t, ok)
	assert.Equal(t, model.Seed("Alice_room"), g.Seed)
	assert.Equal(t, 1, r.Len())
}

func TestAddDuplicateSeed(t *testing.T) {
	r := New(testutil.NopLogger())

	require.NoError(t, r.Add(newGame("Alice_room")))
	err := r.Add(newGame("Alice_room"))
	assert.ErrorIs(t, err, model.ErrSeedTaken)
	assert.Equal(t, 1, r.Len())
}

func TestGetMissing(t *testing.T) {
	r := New(testutil.NopLogger())

	g, ok := r.Get("ghost_room")
	assert.False(t, ok)
	assert.Nil(t, g)
}

func TestRemove(t *testing.T) {
	r := New(testutil.NopLogger())
	require.NoError(t, r.Add(newGame("Alice_room")))

	r.Remove("Alice_room")
	_, ok := r.Get("Alice_room")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	// Removing a missing seed is a no-op.
	r.Remove("Alice_room")
}
