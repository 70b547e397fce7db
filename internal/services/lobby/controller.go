package lobby

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tetranet/tetranet/internal/dependencies/clock"
	"github.com/tetranet/tetranet/internal/dependencies/random"
	"github.com/tetranet/tetranet/internal/dependencies/rng"
	"github.com/tetranet/tetranet/internal/engine"
	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/protocol"
	"github.com/tetranet/tetranet/internal/registry"
	"github.com/tetranet/tetranet/internal/services/play"
	"github.com/tetranet/tetranet/internal/storage"
)

// CountdownDelay is how far in the future the synchronized launch deadline
// is placed. Clients call back at the absolute deadline, so clock skew on
// the relative delay does not desynchronize starts.
const CountdownDelay = 3 * time.Second

// Sink delivers server events to one connection.
type Sink interface {
	Send(event protocol.EventName, data any)
}

// Controller owns the lobby lifecycle: create/join/leave, host migration,
// launch, ranking, and the per-player session map. One mutex serializes all
// lobby mutation; sessions are never called while it is held.
type Controller struct {
	mu sync.Mutex

	registry *registry.Registry
	history  storage.Store
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	sinks    map[model.ConnID]Sink
	seats    map[model.ConnID]model.Seed
	sessions map[model.ConnID]*play.Session
}

// NewController creates a new lobby Controller.
func NewController(
	reg *registry.Registry,
	history storage.Store,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry: reg,
		history:  history,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "lobby")),
		sinks:    make(map[model.ConnID]Sink),
		seats:    make(map[model.ConnID]model.Seed),
		sessions: make(map[model.ConnID]*play.Session),
	}
}

// The controller is the Room every session talks to.
var _ play.Room = (*Controller)(nil)

// CreateLobby registers a new game under the seed derived from the
// creator's username and seats the creator as host. A connection already
// seated elsewhere must leave first.
func (c *Controller) CreateLobby(id model.ConnID, sink Sink, username string) (*model.Game, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, held := c.heldSeat(id); held {
		return nil, model.ErrAlreadyInLobby
	}

	now := c.clock.Now()
	g := &model.Game{
		Seed:      model.Seed(username + model.SeedSuffix),
		RNGSeed:   c.random.Int63(),
		Grids:     make(map[model.ConnID]model.Grid),
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.Players = append(g.Players, &model.Player{
		ConnID:   id,
		Username: username,
		Host:     true,
		Ready:    true,
	})

	if err := c.registry.Add(g); err != nil {
		return nil, err
	}

	c.sinks[id] = sink
	c.seats[id] = g.Seed

	c.logger.Info("lobby created",
		slog.String("seed", string(g.Seed)),
		slog.String("username", username),
	)
	return g, nil
}

// Join seats a player in an existing lobby. Full or in-progress lobbies,
// usernames already taken by another connection, and connections seated in a
// different lobby are rejected; rejoining the held lobby is a no-op.
func (c *Controller) Join(id model.ConnID, sink Sink, seed model.Seed, username string) (*model.Game, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if held, ok := c.heldSeat(id); ok && held != seed {
		return nil, model.ErrAlreadyInLobby
	}

	g, ok := c.registry.Get(seed)
	if !ok {
		return nil, model.ErrGameNotExist
	}
	if g.InProgress {
		return nil, model.ErrGameInProgress
	}
	if existing := g.GetByUsername(username); existing != nil {
		if existing.ConnID != id {
			return nil, model.ErrUsernameTaken
		}
		return g, nil // already seated under this name
	}
	if g.GetPlayer(id) != nil {
		return g, nil
	}
	if len(g.Players) >= model.MaxPlayers {
		return nil, model.ErrLobbyFull
	}

	g.Players = append(g.Players, &model.Player{
		ConnID:   id,
		Username: username,
		Ready:    true,
	})
	g.UpdatedAt = c.clock.Now()

	c.sinks[id] = sink
	c.seats[id] = seed

	c.logger.Info("player joined",
		slog.String("seed", string(seed)),
		slog.String("username", username),
		slog.Int("roster", len(g.Players)),
	)

	c.broadcast(g, protocol.EvtServerLog, fmt.Sprintf("%s join the game !", username))
	c.broadcast(g, protocol.EvtClientJoin, username)
	return g, nil
}

// Leave removes the connection's player from its lobby: the gravity timer
// is cancelled synchronously before the grid is detached, the host role
// migrates if needed, and an emptied lobby is torn down.
func (c *Controller) Leave(id model.ConnID) {
	c.mu.Lock()
	sess := c.sessions[id]
	c.mu.Unlock()

	if sess != nil {
		sess.Stop()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sessions, id)
	delete(c.sinks, id)

	seed, seated := c.seats[id]
	if !seated {
		return
	}
	delete(c.seats, id)

	g, ok := c.registry.Get(seed)
	if !ok {
		return
	}
	p := g.GetPlayer(id)
	if p == nil {
		return
	}

	wasHost := p.Host
	for i, member := range g.Players {
		if member.ConnID == id {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			break
		}
	}
	delete(g.Grids, id)
	g.UpdatedAt = c.clock.Now()

	if len(g.Players) == 0 {
		c.registry.Remove(seed)
		return
	}

	if wasHost {
		promoted := g.Players[0]
		promoted.Host = true
		if sink, ok := c.sinks[promoted.ConnID]; ok {
			sink.Send(protocol.EvtRefreshPlayer, nil)
		}
		c.logger.Info("host migrated",
			slog.String("seed", string(seed)),
			slog.String("username", promoted.Username),
		)
	}

	c.broadcast(g, protocol.EvtServerLog, fmt.Sprintf("%s left the game.", p.Username))
}

// LaunchGame is the host's launch. It requires every roster member to be
// ready, flips the lobby in progress, and broadcasts the absolute countdown
// deadline; each client calls back at that deadline to start its session.
func (c *Controller) LaunchGame(id model.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, p, err := c.seated(id)
	if err != nil {
		return err
	}
	if !p.Host {
		return model.ErrNotHost
	}
	if g.ReadyCount() != len(g.Players) {
		return model.ErrPlayersNotReady
	}

	g.InProgress = true
	g.UpdatedAt = c.clock.Now()
	deadline := c.clock.Now().Add(CountdownDelay).UnixMilli()

	c.broadcast(g, protocol.EvtLaunchGameStarted, nil)
	c.broadcast(g, protocol.EvtLaunch, deadline)

	c.logger.Info("game launched",
		slog.String("seed", string(g.Seed)),
		slog.Int("players", len(g.Players)),
		slog.Int64("deadline_ms", deadline),
	)
	return nil
}

// Ready marks the connection's player ready for the next launch. Players
// join ready; readiness is only cleared by return-to-lobby.
func (c *Controller) Ready(id model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, p, err := c.seated(id); err == nil {
		p.Ready = true
	}
}

// StartSession creates the player's session on first use and starts its
// gravity loop. Clients call this at the shared launch deadline.
func (c *Controller) StartSession(id model.ConnID) error {
	c.mu.Lock()
	if _, seated := c.seats[id]; !seated {
		c.mu.Unlock()
		return model.ErrNotInLobby
	}
	sess := c.sessions[id]
	sink := c.sinks[id]
	c.mu.Unlock()

	if sess == nil {
		created := play.New(id, sink, c, c.logger)
		c.mu.Lock()
		if existing := c.sessions[id]; existing != nil {
			created = existing
		} else {
			c.sessions[id] = created
		}
		sess = created
		c.mu.Unlock()
	}

	sess.Start()
	return nil
}

// StopSession pauses the player's session, if any.
func (c *Controller) StopSession(id model.ConnID) error {
	c.mu.Lock()
	sess := c.sessions[id]
	c.mu.Unlock()

	if sess == nil {
		return model.ErrNoSession
	}
	sess.Stop()
	return nil
}

// Session returns the live session for a connection, or nil.
func (c *Controller) Session(id model.ConnID) *play.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[id]
}

// Finish records the player's score in finish order and marks them not
// alive. When the last alive player finishes, the full ranking is broadcast
// to the room and the match summary is persisted.
func (c *Controller) Finish(ctx context.Context, id model.ConnID, score int) {
	c.mu.Lock()

	g, p, err := c.seated(id)
	if err != nil {
		c.mu.Unlock()
		return
	}
	for _, entry := range g.Ranking {
		if entry.ConnID == id {
			c.mu.Unlock()
			return // already finished
		}
	}

	g.Ranking = append(g.Ranking, model.RankEntry{
		ConnID:   id,
		Username: p.Username,
		Score:    score,
	})
	p.Ready = false
	g.UpdatedAt = c.clock.Now()

	var record *model.MatchRecord
	if g.AliveCount() == 0 {
		g.InProgress = false
		entries := make([]model.RankEntry, len(g.Ranking))
		copy(entries, g.Ranking)
		c.broadcast(g, protocol.EvtRank, entries)
		record = &model.MatchRecord{
			Seed:       g.Seed,
			Rankings:   entries,
			FinishedAt: c.clock.Now(),
		}
		c.logger.Info("game finished",
			slog.String("seed", string(g.Seed)),
			slog.Int("players", len(entries)),
		)
	}
	c.mu.Unlock()

	if record != nil {
		if err := c.history.SaveMatch(ctx, record); err != nil {
			c.logger.Error("failed to save match record",
				slog.String("seed", string(record.Seed)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// ReturnToLobby tears down the caller's session and, on the first call
// after a game, resets the lobby: ranking cleared, readiness reset, grid
// snapshots dropped, and the RNG seed integer re-rolled.
func (c *Controller) ReturnToLobby(id model.ConnID) {
	c.mu.Lock()
	sess := c.sessions[id]
	delete(c.sessions, id)
	c.mu.Unlock()

	if sess != nil {
		sess.Stop()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seed, seated := c.seats[id]
	if !seated {
		return
	}
	g, ok := c.registry.Get(seed)
	if !ok {
		return
	}

	if g.InProgress || len(g.Ranking) > 0 {
		g.Ranking = nil
		g.InProgress = false
		g.Grids = make(map[model.ConnID]model.Grid)
		for _, p := range g.Players {
			p.Ready = false
		}
		g.RNGSeed = c.random.Int63()
		g.UpdatedAt = c.clock.Now()
		c.logger.Info("lobby reset", slog.String("seed", string(seed)))
	}
}

// GameExist reports whether the connection's lobby is registered.
func (c *Controller) GameExist(id model.ConnID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	seed, seated := c.seats[id]
	if !seated {
		return false
	}
	_, ok := c.registry.Get(seed)
	return ok
}

// Username returns the connection's display name, or "" when unjoined.
func (c *Controller) Username(id model.ConnID) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, p, err := c.seated(id); err == nil {
		return p.Username
	}
	return ""
}

// IsHost reports whether the connection's player holds the host role.
func (c *Controller) IsHost(id model.ConnID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, p, err := c.seated(id); err == nil {
		return p.Host
	}
	return false
}

// PlayerList returns the roster usernames in seat order.
func (c *Controller) PlayerList(id model.ConnID) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, _, err := c.seated(id)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		names = append(names, p.Username)
	}
	return names
}

// RouteCheck validates a "/<seed>/<username>" path: the lobby must exist
// and the username must belong to this connection or be unclaimed.
func (c *Controller) RouteCheck(id model.ConnID, path string) (bool, string) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false, "invalid route"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.registry.Get(model.Seed(parts[0]))
	if !ok {
		return false, model.ErrGameNotExist.Error()
	}
	if existing := g.GetByUsername(parts[1]); existing != nil && existing.ConnID != id {
		return false, model.ErrUsernameTaken.Error()
	}
	return true, ""
}

// GetGrids returns every published grid snapshot in the caller's lobby,
// flattened, in roster order.
func (c *Controller) GetGrids(id model.ConnID) []protocol.PlayerGrid {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, _, err := c.seated(id)
	if err != nil {
		return nil
	}
	grids := make([]protocol.PlayerGrid, 0, len(g.Players))
	for _, p := range g.Players {
		snap, ok := g.Grids[p.ConnID]
		if !ok {
			continue
		}
		grids = append(grids, protocol.PlayerGrid{
			Username: p.Username,
			Cells:    snap.Flatten(),
		})
	}
	return grids
}

// History returns the match records for a seed, most recent first.
func (c *Controller) History(ctx context.Context, seed model.Seed) ([]model.MatchRecord, error) {
	return c.history.MatchesForSeed(ctx, seed)
}

// Sequence implements play.Room: a fresh shuffle sequence seeded from the
// lobby's current seed integer. Every bag refill in the lobby starts an
// identical sequence, keeping piece order synchronized across players.
func (c *Controller) Sequence(id model.ConnID) rng.Sequence {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g, _, err := c.seated(id); err == nil {
		return rng.NewLCG(g.RNGSeed)
	}
	return rng.NewLCG(0)
}

// PublishGrid implements play.Room: records the player's snapshot and, when
// the lock cleared lines, pushes a stone penalty row into every other
// player's recorded grid.
func (c *Controller) PublishGrid(id model.ConnID, grid model.Grid, cleared bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, _, err := c.seated(id)
	if err != nil {
		return
	}
	g.Grids[id] = grid
	if cleared {
		for _, p := range g.Players {
			if p.ConnID == id {
				continue
			}
			if snap, ok := g.Grids[p.ConnID]; ok {
				g.Grids[p.ConnID] = engine.WithStoneRow(snap)
			}
		}
	}
	g.UpdatedAt = c.clock.Now()
}

// DetachGrid implements play.Room: drops the player's snapshot.
func (c *Controller) DetachGrid(id model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g, _, err := c.seated(id); err == nil {
		delete(g.Grids, id)
	}
}

// heldSeat returns the live lobby this connection is seated in, if any. A
// stale seat whose game is gone from the registry is cleared rather than
// reported, so it cannot lock the connection out. Callers hold mu.
func (c *Controller) heldSeat(id model.ConnID) (model.Seed, bool) {
	held, ok := c.seats[id]
	if !ok {
		return "", false
	}
	if _, live := c.registry.Get(held); !live {
		delete(c.seats, id)
		return "", false
	}
	return held, true
}

// seated resolves a connection to its game and player. Callers hold mu.
func (c *Controller) seated(id model.ConnID) (*model.Game, *model.Player, error) {
	seed, ok := c.seats[id]
	if !ok {
		return nil, nil, model.ErrNotInLobby
	}
	g, ok := c.registry.Get(seed)
	if !ok {
		return nil, nil, model.ErrGameNotExist
	}
	p := g.GetPlayer(id)
	if p == nil {
		return nil, nil, model.ErrNotInLobby
	}
	return g, p, nil
}

// broadcast sends an event to every seated member of the game. Callers
// hold mu; sinks never block.
func (c *Controller) broadcast(g *model.Game, event protocol.EventName, data any) {
	for _, p := range g.Players {
		if sink, ok := c.sinks[p.ConnID]; ok {
			sink.Send(event, data)
		}
	}
}

func validateUsername(username string) error {
	if username == "" || utf8.RuneCountInString(username) > model.MaxUsernameLen {
		return model.ErrUsernameInvalid
	}
	return nil
}
