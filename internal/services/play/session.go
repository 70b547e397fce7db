package play

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tetranet/tetranet/internal/dependencies/rng"
	"github.com/tetranet/tetranet/internal/engine"
	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/protocol"
)

// Sink delivers server events to the session's own connection.
type Sink interface {
	Send(event protocol.EventName, data any)
}

// Room is the lobby surface a session touches: piece sequences shared by the
// whole lobby, and the per-player grid snapshot map.
type Room interface {
	// Sequence returns a fresh shuffle sequence seeded from the lobby's
	// current seed integer. Every refill of every bag in the lobby uses an
	// identically seeded sequence, so all players draw the same piece order.
	Sequence(id model.ConnID) rng.Sequence

	// PublishGrid records the player's grid snapshot. cleared reports
	// whether this lock cleared lines, which penalizes the other players.
	PublishGrid(id model.ConnID, grid model.Grid, cleared bool)

	// DetachGrid removes the player's snapshot after game over.
	DetachGrid(id model.ConnID)
}

// State is the session's lifecycle phase.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateGameOver State = "gameover"
	StateStopped  State = "stopped"
)

// Gravity interval bounds: the base tick, the speed-up per ten cleared
// lines, and the floor.
const (
	baseInterval  = 500 * time.Millisecond
	speedUpStep   = 50 * time.Millisecond
	speedUpEvery  = 10
	floorInterval = 100 * time.Millisecond
)

// Interval returns the gravity delay for a cumulative cleared-line count.
func Interval(lines int) time.Duration {
	d := baseInterval - time.Duration(lines/speedUpEvery)*speedUpStep
	if d < floorInterval {
		return floorInterval
	}
	return d
}

// Session runs one player's live play loop: it owns the falling piece, the
// permanent grid, the bag, and the gravity timer. Each connected, in-lobby
// player gets exactly one Session. All mutation happens under mu; the timer
// generation counter makes a stale firing after cancellation a no-op.
type Session struct {
	mu sync.Mutex

	id     model.ConnID
	sink   Sink
	room   Room
	logger *slog.Logger

	state  State
	grid   model.Grid
	active *engine.Piece
	next   engine.Piece
	bag    engine.Bag
	lines  int

	timer *time.Timer
	gen   uint64
}

// New creates an Idle session: deals the first "next" piece, emits its
// preview, and publishes an empty grid snapshot to the room.
func New(id model.ConnID, sink Sink, room Room, logger *slog.Logger) *Session {
	s := &Session{
		id:     id,
		sink:   sink,
		room:   room,
		logger: logger.With(slog.String("component", "session"), slog.String("conn", string(id))),
		state:  StateIdle,
		grid:   model.NewGrid(),
	}
	s.next = s.draw()
	s.emitNext()
	room.PublishGrid(id, s.grid.Copy(), false)
	return s
}

// Start spawns the held next piece as active and starts gravity. A spawn
// collision at the home position is an immediate game over.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return
	}
	s.state = StateRunning

	active := s.next
	s.active = &active
	s.emitGrid()
	s.next = s.draw()
	s.emitNext()
	s.sink.Send(protocol.EvtGetGameRunning, true)
	s.schedule()

	if !engine.CanPlace(*s.active, s.grid) {
		s.gameOver()
	}
}

// Stop cancels gravity. After a game over it also clears transient state
// and detaches the grid snapshot; a plain stop (pause/leave) keeps them.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
}

// Move shifts the active piece by (dx, dy) if valid. Running-only.
func (s *Session) Move(dx, dy int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || s.active == nil {
		return false
	}
	moved, ok := engine.AttemptMove(*s.active, s.grid, dx, dy)
	if !ok {
		return false
	}
	s.active = &moved
	s.emitGrid()
	return true
}

// Rotate turns the active piece clockwise if the rotation fits.
func (s *Session) Rotate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || s.active == nil {
		return false
	}
	rotated, ok := engine.AttemptRotate(*s.active, s.grid)
	if !ok {
		return false
	}
	s.active = &rotated
	s.emitGrid()
	return true
}

// HardDrop sends the active piece to its lowest valid position and commits
// the lock immediately. A drop that cannot move is a no-op.
func (s *Session) HardDrop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || s.active == nil {
		return false
	}
	dropped, ok := engine.HardDrop(*s.active, s.grid)
	if !ok {
		return false
	}
	s.active = &dropped
	s.lockPiece()
	return true
}

// HandleInput maps a protocol key name onto the matching action.
func (s *Session) HandleInput(key string) {
	switch key {
	case protocol.KeyLeft:
		s.Move(-1, 0)
	case protocol.KeyRight:
		s.Move(1, 0)
	case protocol.KeyDown:
		s.Move(0, 1)
	case protocol.KeyUp:
		s.Rotate()
	case protocol.KeySpace:
		s.HardDrop()
	}
}

// InitGrid resets the permanent grid, republishes the snapshot, and returns
// the flattened visual grid.
func (s *Session) InitGrid() []model.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grid = model.NewGrid()
	s.lines = 0
	s.room.PublishGrid(s.id, s.grid.Copy(), false)
	return engine.VisualGrid(s.grid, s.active).Flatten()
}

// PreviewFlat returns the flattened preview of the held next piece.
func (s *Session) PreviewFlat() []model.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return engine.PreviewGrid(s.next, engine.PreviewSize).Flatten()
}

// Running reports whether gravity is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRunning
}

// Lines returns the cumulative cleared-line count.
func (s *Session) Lines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// tick is one gravity step: move down, or lock when blocked.
func (s *Session) tick() {
	moved, ok := engine.AttemptMove(*s.active, s.grid, 0, 1)
	if ok {
		s.active = &moved
		s.emitGrid()
		return
	}
	s.lockPiece()
}

// lockPiece commits the active piece: write and clear via the pure engine,
// publish the snapshot (penalizing opponents when lines cleared), then
// spawn the held next piece and re-check spawn validity.
func (s *Session) lockPiece() {
	prev := s.lines
	newGrid, cleared := engine.LockAndClear(s.grid, *s.active, s.lines)
	s.grid = newGrid
	s.room.PublishGrid(s.id, newGrid.Copy(), cleared > prev)
	s.lines = cleared
	s.sink.Send(protocol.EvtGetLines, s.lines)

	active := s.next
	s.active = &active
	s.emitGrid()
	s.next = s.draw()
	s.emitNext()

	if cleared > prev {
		// Restart gravity at the possibly faster interval.
		s.schedule()
	}

	if !engine.CanPlace(*s.active, s.grid) {
		s.gameOver()
	}
}

func (s *Session) gameOver() {
	s.state = StateGameOver
	s.sink.Send(protocol.EvtGetGameOver, true)
	s.logger.Info("session over", slog.Int("lines", s.lines))
	s.stop()
}

// stop cancels the timer and, on the game-over path, clears transient
// state. Callers hold mu. The generation bump invalidates any in-flight
// timer callback before the grid is detached.
func (s *Session) stop() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.state == StateGameOver {
		s.lines = 0
		s.active = nil
		s.room.DetachGrid(s.id)
	} else {
		s.state = StateStopped
	}
	s.sink.Send(protocol.EvtGetGameRunning, false)
}

// schedule arms the gravity timer under a fresh generation, cancelling any
// previously armed timer.
func (s *Session) schedule() {
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(Interval(s.lines), func() { s.fire(gen) })
}

// fire runs one timer expiry. A firing from a superseded generation is
// dropped without touching state.
func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.state != StateRunning || s.active == nil {
		return
	}
	s.tick()
	if s.state == StateRunning && gen == s.gen {
		s.timer = time.AfterFunc(Interval(s.lines), func() { s.fire(gen) })
	}
}

func (s *Session) draw() engine.Piece {
	return engine.NewPiece(s.bag.Draw(s.room.Sequence(s.id)))
}

func (s *Session) emitGrid() {
	s.sink.Send(protocol.EvtFlattenedGrid, engine.VisualGrid(s.grid, s.active).Flatten())
}

func (s *Session) emitNext() {
	s.sink.Send(protocol.EvtFlattenedNext, engine.PreviewGrid(s.next, engine.PreviewSize).Flatten())
}
