package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetranet/tetranet/internal/model"
)

func record(seed string, score int) *model.MatchRecord {
	return &model.MatchRecord{
		Seed: model.Seed(seed),
		Rankings: []model.RankEntry{
			{Username: "Alice", Score: score},
		},
		FinishedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveMatch(ctx, record("Alice_room", 5)))

	records, err := s.MatchesForSeed(ctx, "Alice_room")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Rankings[0].Score)
}

func TestNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	for score := 1; score <= 3; score++ {
		require.NoError(t, s.SaveMatch(ctx, record("Alice_room", score)))
	}

	records, err := s.MatchesForSeed(ctx, "Alice_room")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 3, records[0].Rankings[0].Score)
	assert.Equal(t, 1, records[2].Rankings[0].Score)
}

func TestMissingSeed(t *testing.T) {
	s := New()

	_, err := s.MatchesForSeed(context.Background(), "ghost_room")
	assert.ErrorIs(t, err, model.ErrHistoryNotFound)
}

func TestSeedsAreIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveMatch(ctx, record("Alice_room", 1)))
	require.NoError(t, s.SaveMatch(ctx, record("Bob_room", 2)))

	records, err := s.MatchesForSeed(ctx, "Alice_room")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestHistoryIsBounded(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < maxRecordsPerSeed+10; i++ {
		require.NoError(t, s.SaveMatch(ctx, record("Alice_room", i)))
	}

	records, err := s.MatchesForSeed(ctx, "Alice_room")
	require.NoError(t, err)
	assert.Len(t, records, maxRecordsPerSeed)
	assert.Equal(t, maxRecordsPerSeed+9, records[0].Rankings[0].Score,
		fmt.Sprintf("newest record kept when trimming to %d", maxRecordsPerSeed))
}

func TestCloseIsNoOp(t *testing.T) {
	assert.NoError(t, New().Close())
}
