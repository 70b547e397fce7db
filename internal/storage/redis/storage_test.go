package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetranet/tetranet/internal/model"
)

func newTestStorage(t *testing.T, cfg Config) *Storage {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewWithClient(client, cfg)
}

func record(seed string, score int) *model.MatchRecord {
	return &model.MatchRecord{
		Seed: model.Seed(seed),
		Rankings: []model.RankEntry{
			{Username: "Alice", Score: score},
			{Username: "Bob", Score: score + 1},
		},
		FinishedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStorage(t, DefaultConfig())
	ctx := context.Background()

	require.NoError(t, s.SaveMatch(ctx, record("Alice_room", 5)))

	records, err := s.MatchesForSeed(ctx, "Alice_room")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.Seed("Alice_room"), records[0].Seed)
	require.Len(t, records[0].Rankings, 2)
	assert.Equal(t, "Alice", records[0].Rankings[0].Username)
	assert.Equal(t, 5, records[0].Rankings[0].Score)
	assert.True(t, records[0].FinishedAt.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestNewestFirst(t *testing.T) {
	s := newTestStorage(t, DefaultConfig())
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
	s := newTestStorage(t, DefaultConfig())

	_, err := s.MatchesForSeed(context.Background(), "ghost_room")
	assert.ErrorIs(t, err, model.ErrHistoryNotFound)
}

func TestHistoryIsTrimmed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRecordsPerSeed = 2
	s := newTestStorage(t, cfg)
	ctx := context.Background()

	for score := 1; score <= 5; score++ {
		require.NoError(t, s.SaveMatch(ctx, record("Alice_room", score)))
	}

	records, err := s.MatchesForSeed(ctx, "Alice_room")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 5, records[0].Rankings[0].Score)
	assert.Equal(t, 4, records[1].Rankings[0].Score)
}

func TestHistoryKeyFormat(t *testing.T) {
	assert.Equal(t, "tetranet:history:Alice_room", historyKey("Alice_room"))
}
