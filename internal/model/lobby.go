package model

import "time"

// Seed is the string key identifying a lobby. It is derived from the
// creator's username as "<username>_room".
type Seed string

// SeedSuffix is appended to the creator's username to form the lobby seed.
const SeedSuffix = "_room"

// MaxPlayers is the roster cap for one lobby.
const MaxPlayers = 5

// Game is one lobby: a roster of players sharing a seed, per-player grid
// snapshots, a ranking table, and the RNG seed integer every bag refill in
// the lobby is derived from.
type Game struct {
	Seed       Seed
	Players    []*Player       // roster order; index 0 is promoted on host departure
	Grids      map[ConnID]Grid // snapshots published on lock events
	Ranking    []RankEntry     // append order is finish order
	RNGSeed    int64
	InProgress bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GetPlayer returns the roster entry for the given connection, or nil.
func (g *Game) GetPlayer(id ConnID) *Player {
	for _, p := range g.Players {
		if p.ConnID == id {
			return p
		}
	}
	return nil
}

// GetByUsername returns the roster entry with the given display name, or nil.
func (g *Game) GetByUsername(name string) *Player {
	for _, p := range g.Players {
		if p.Username == name {
			return p
		}
	}
	return nil
}

// GetHost returns the host player, or nil for an empty roster.
func (g *Game) GetHost() *Player {
	for _, p := range g.Players {
		if p.Host {
			return p
		}
	}
	return nil
}

// ReadyCount returns how many roster members are flagged ready.
func (g *Game) ReadyCount() int {
	n := 0
	for _, p := range g.Players {
		if p.Ready {
			n++
		}
	}
	return n
}

// AliveCount returns how many players are still playing. Ready is reused as
// the alive flag while InProgress is set.
func (g *Game) AliveCount() int {
	return g.ReadyCount()
}
