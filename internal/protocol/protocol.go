package protocol

import (
	"encoding/json"

	"github.com/tetranet/tetranet/internal/model"
)

// EventName identifies a message on the bidirectional event channel.
type EventName string

// Client -> server events.
const (
	EvtCreateLobby EventName = "create-lobby"
	EvtJoinUser    EventName = "join-user"
	EvtLaunchGame  EventName = "launch-game"
	EvtLaunch      EventName = "launch"
	EvtInput       EventName = "input"
	EvtAskServer   EventName = "ask-server"
	EvtGetGrids    EventName = "get-grids"
	EvtFinish      EventName = "finish"
	EvtReturnLobby EventName = "return-lobby"
	EvtReturn      EventName = "return"
)

// Server -> client events.
const (
	EvtLobbyJoin         EventName = "lobby-join"
	EvtError             EventName = "error"
	EvtServerLog         EventName = "server-log"
	EvtRefreshPlayer     EventName = "refresh-player"
	EvtClientJoin        EventName = "client-join"
	EvtFlattenedGrid     EventName = "flattenedGrid"
	EvtFlattenedNext     EventName = "flattenedNextPiece"
	EvtGetLines          EventName = "getLines"
	EvtGetGameOver       EventName = "getGameOver"
	EvtGetGameRunning    EventName = "getGameRunning"
	EvtGrids             EventName = "grids"
	EvtRank              EventName = "rank"
	EvtGoTo              EventName = "go-to"
	EvtResponse          EventName = "response"
	EvtLaunchGameStarted EventName = "launch-game" // broadcast form, no payload
)

// Signal names the typed request kinds multiplexed over ask-server. A
// route-check signal is any value of the form "/<seed>/<username>".
type Signal string

const (
	SigGameExist     Signal = "game-exist"
	SigGetUsername   Signal = "get-username"
	SigStartGame     Signal = "start-game"
	SigInitGrid      Signal = "init-grid"
	SigInitPiece     Signal = "init-piece"
	SigStopGame      Signal = "stop-game"
	SigGetHost       Signal = "get-host"
	SigGetPlayerList Signal = "get-player-list"
)

// Input key names accepted by the input event.
const (
	KeyLeft  = "ArrowLeft"
	KeyRight = "ArrowRight"
	KeyDown  = "ArrowDown"
	KeyUp    = "ArrowUp"
	KeySpace = "Space"
)

// Envelope is the wire frame: an event name plus a JSON payload.
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is an outbound frame before marshaling.
type ServerMessage struct {
	Event EventName `json:"event"`
	Data  any       `json:"data,omitempty"`
}

// JoinUser is the join-user payload.
type JoinUser struct {
	Seed     string `json:"seed"`
	Username string `json:"username"`
}

// LobbyJoin confirms lobby membership. The key spellings are contractual.
type LobbyJoin struct {
	Seed     string `json:"Seed"`
	Username string `json:"Username"`
}

// Ask is a typed request with a caller-chosen correlation id; the matching
// Response echoes both. Late responses (after the caller's 1000ms budget)
// must be discarded by id on the caller side.
type Ask struct {
	Signal Signal `json:"signal"`
	ID     int64  `json:"id"`
}

// Response answers one Ask.
type Response struct {
	Signal Signal `json:"signal"`
	ID     int64  `json:"id"`
	Data   any    `json:"data"`
}

// Input carries one key press.
type Input struct {
	Key string `json:"key"`
}

// Finish reports a player's final score (cumulative cleared lines).
type Finish struct {
	Score int `json:"score"`
}

// GoTo redirects the client's router.
type GoTo struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// PlayerGrid is one entry of the grids broadcast.
type PlayerGrid struct {
	Username string       `json:"username"`
	Cells    []model.Cell `json:"cells"`
}
