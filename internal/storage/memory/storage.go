package memory

import (
	"context"
	"sync"

	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/storage"
)

// maxRecordsPerSeed bounds how much history one seed can accumulate.
const maxRecordsPerSeed = 50

// Storage is an in-memory implementation of the match-history store.
type Storage struct {
	mu      sync.RWMutex
	matches map[model.Seed][]model.MatchRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		matches: make(map[model.Seed][]model.MatchRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) SaveMatch(ctx context.Context, record *model.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := append([]model.MatchRecord{*record}, s.matches[record.Seed]...)
	if len(records) > maxRecordsPerSeed {
		records = records[:maxRecordsPerSeed]
	}
	s.matches[record.Seed] = records
	return nil
}

func (s *Storage) MatchesForSeed(ctx context.Context, seed model.Seed) ([]model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.matches[seed]
	if !ok || len(records) == 0 {
		return nil, model.ErrHistoryNotFound
	}
	out := make([]model.MatchRecord, len(records))
	copy(out, records)
	return out, nil
}

func (s *Storage) Close() error {
	return nil
}
