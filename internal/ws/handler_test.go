package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetranet/tetranet/internal/dependencies/clock"
	"github.com/tetranet/tetranet/internal/dependencies/random"
	"github.com/tetranet/tetranet/internal/protocol"
	"github.com/tetranet/tetranet/internal/registry"
	"github.com/tetranet/tetranet/internal/services/lobby"
	"github.com/tetranet/tetranet/internal/storage/memory"
	"github.com/tetranet/tetranet/internal/testutil"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := testutil.NopLogger()
	ctrl := lobby.NewController(registry.New(logger), memory.New(), clock.New(), random.New(), logger)
	server := httptest.NewServer(NewHandler(ctrl, logger))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event protocol.EventName, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(protocol.Envelope{Event: event, Data: raw}))
}

// readEvent discards frames until the wanted event arrives.
func readEvent(t *testing.T, conn *websocket.Conn, want protocol.EventName) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var frame struct {
			Event protocol.EventName `json:"event"`
			Data  json.RawMessage    `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		if frame.Event == want {
			return frame.Data
		}
	}
}

func TestCreateLobbyReturnsSeed(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, protocol.EvtCreateLobby, "Etienne")

	var joined protocol.LobbyJoin
	require.NoError(t, json.Unmarshal(readEvent(t, conn, protocol.EvtLobbyJoin), &joined))
	assert.Equal(t, "Etienne_room", joined.Seed)
	assert.Equal(t, "Etienne", joined.Username)
}

func TestCreateLobbyDuplicateSeed(t *testing.T) {
	server := newTestServer(t)

	first := dial(t, server)
	send(t, first, protocol.EvtCreateLobby, "Etienne")
	readEvent(t, first, protocol.EvtLobbyJoin)

	second := dial(t, server)
	send(t, second, protocol.EvtCreateLobby, "Etienne")

	var msg string
	require.NoError(t, json.Unmarshal(readEvent(t, second, protocol.EvtError), &msg))
	assert.Equal(t, "username already exist", msg)
}

func TestJoinMissingGame(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, protocol.EvtJoinUser, protocol.JoinUser{Seed: "nope_room", Username: "Bob"})

	var msg string
	require.NoError(t, json.Unmarshal(readEvent(t, conn, protocol.EvtError), &msg))
	assert.Equal(t, "Game not exist", msg)
}

func TestJoinBroadcastsToRoom(t *testing.T) {
	server := newTestServer(t)

	host := dial(t, server)
	send(t, host, protocol.EvtCreateLobby, "Alice")
	readEvent(t, host, protocol.EvtLobbyJoin)

	joiner := dial(t, server)
	send(t, joiner, protocol.EvtJoinUser, protocol.JoinUser{Seed: "Alice_room", Username: "Bob"})
	readEvent(t, joiner, protocol.EvtLobbyJoin)

	var notice string
	require.NoError(t, json.Unmarshal(readEvent(t, host, protocol.EvtServerLog), &notice))
	assert.Equal(t, "Bob join the game !", notice)
}

func TestJoinTakenUsernameRedirects(t *testing.T) {
	server := newTestServer(t)

	host := dial(t, server)
	send(t, host, protocol.EvtCreateLobby, "Alice")
	readEvent(t, host, protocol.EvtLobbyJoin)

	first := dial(t, server)
	send(t, first, protocol.EvtJoinUser, protocol.JoinUser{Seed: "Alice_room", Username: "Bob"})
	readEvent(t, first, protocol.EvtLobbyJoin)

	second := dial(t, server)
	send(t, second, protocol.EvtJoinUser, protocol.JoinUser{Seed: "Alice_room", Username: "Bob"})

	var redirect protocol.GoTo
	require.NoError(t, json.Unmarshal(readEvent(t, second, protocol.EvtGoTo), &redirect))
	assert.Equal(t, "/", redirect.Path)
}

func TestAskServerEchoesCorrelationID(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, protocol.EvtCreateLobby, "Alice")
	readEvent(t, conn, protocol.EvtLobbyJoin)

	send(t, conn, protocol.EvtAskServer, protocol.Ask{Signal: protocol.SigGameExist, ID: 77})

	var resp struct {
		Signal protocol.Signal `json:"signal"`
		ID     int64           `json:"id"`
		Data   bool            `json:"data"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, conn, protocol.EvtResponse), &resp))
	assert.Equal(t, protocol.SigGameExist, resp.Signal)
	assert.Equal(t, int64(77), resp.ID)
	assert.True(t, resp.Data)
}

func TestStartGameFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, protocol.EvtCreateLobby, "Alice")
	readEvent(t, conn, protocol.EvtLobbyJoin)

	send(t, conn, protocol.EvtLaunchGame, "Alice_room")
	readEvent(t, conn, protocol.EvtLaunch)

	// The session emits its running state before the ask is answered.
	send(t, conn, protocol.EvtAskServer, protocol.Ask{Signal: protocol.SigStartGame, ID: 1})
	var running bool
	require.NoError(t, json.Unmarshal(readEvent(t, conn, protocol.EvtGetGameRunning), &running))
	assert.True(t, running)
	readEvent(t, conn, protocol.EvtResponse)

	// The preview and the visual grid stream to the owning connection.
	send(t, conn, protocol.EvtAskServer, protocol.Ask{Signal: protocol.SigInitGrid, ID: 2})
	var cells []string
	require.NoError(t, json.Unmarshal(readEvent(t, conn, protocol.EvtResponse), &cells))
	assert.Len(t, cells, 200)

	send(t, conn, protocol.EvtInput, protocol.Input{Key: protocol.KeySpace})
	var lines int
	require.NoError(t, json.Unmarshal(readEvent(t, conn, protocol.EvtGetLines), &lines))
	assert.GreaterOrEqual(t, lines, 0)
}

func TestUnknownEvent(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, protocol.EvtAskServer, protocol.Ask{Signal: "no-such-signal", ID: 3})

	var msg string
	require.NoError(t, json.Unmarshal(readEvent(t, conn, protocol.EvtError), &msg))
	assert.Contains(t, msg, "no-such-signal")
}

func TestGetGridsAfterStart(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, protocol.EvtCreateLobby, "Alice")
	readEvent(t, conn, protocol.EvtLobbyJoin)
	send(t, conn, protocol.EvtLaunchGame, "Alice_room")
	send(t, conn, protocol.EvtAskServer, protocol.Ask{Signal: protocol.SigStartGame, ID: 1})
	readEvent(t, conn, protocol.EvtResponse)

	send(t, conn, protocol.EvtGetGrids, nil)

	var grids []protocol.PlayerGrid
	require.NoError(t, json.Unmarshal(readEvent(t, conn, protocol.EvtGrids), &grids))
	require.Len(t, grids, 1)
	assert.Equal(t, "Alice", grids[0].Username)
	assert.Len(t, grids[0].Cells, 200)
}
