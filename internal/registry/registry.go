package registry

import (
	"log/slog"
	"sync"

	"github.com/tetranet/tetranet/internal/model"
)

// Registry is the process-wide map from seed to live Game. It is the only
// global mutable state; entries are added on create-lobby and removed when a
// roster empties. Nothing here is ever persisted.
type Registry struct {
	mu     sync.RWMutex
	games  map[model.Seed]*model.Game
	logger *slog.Logger
}

// New creates an empty Registry.
func New(logger *slog.Logger) *Registry {
	return &Registry{
		games:  make(map[model.Seed]*model.Game),
		logger: logger.With(slog.String("component", "registry")),
	}
}

// Add registers a new game under its seed. Seeds are unique: adding an
// existing seed fails with ErrSeedTaken.
func (r *Registry) Add(g *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[g.Seed]; ok {
		return model.ErrSeedTaken
	}
	r.games[g.Seed] = g
	r.logger.Info("game added", slog.String("seed", string(g.Seed)))
	return nil
}

// Get returns the game for the seed, or nil with ok=false.
func (r *Registry) Get(seed model.Seed) (*model.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[seed]
	return g, ok
}

// Remove drops the game for the seed, if present.
func (r *Registry) Remove(seed model.Seed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[seed]; ok {
		delete(r.games, seed)
		r.logger.Info("game removed", slog.String("seed", string(seed)))
	}
}

// Len returns the number of live games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
