package storage

import (
	"context"

	"github.com/tetranet/tetranet/internal/model"
)

// Store persists completed-match summaries. Live game state never goes
// through here; only the final ranking of a finished game is recorded.
type Store interface {
	// SaveMatch appends a completed match record for its seed.
	SaveMatch(ctx context.Context, record *model.MatchRecord) error

	// MatchesForSeed returns records for a seed, most recent first.
	// Returns ErrHistoryNotFound when the seed has no records.
	MatchesForSeed(ctx context.Context, seed model.Seed) ([]model.MatchRecord, error)

	// Close releases any underlying connections.
	Close() error
}
