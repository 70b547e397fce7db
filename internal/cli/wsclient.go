package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tetranet/tetranet/internal/protocol"
)

// askTimeout is the fixed client-side budget for one ask-server round trip.
// A response arriving after the budget is discarded by correlation id, not
// applied.
const askTimeout = 1000 * time.Millisecond

// ErrNoResponse reports an ask-server round trip that exceeded its budget.
var ErrNoResponse = errors.New("no response from server")

// GameClient is a websocket client for the game's event channel.
type GameClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan json.RawMessage

	// Events receives every non-response server event in arrival order.
	Events chan protocol.ServerMessage

	closeOnce sync.Once
	closed    chan struct{}
}

// DialGame connects to the server's websocket endpoint. The serverURL is the
// HTTP base URL; the scheme is rewritten for the websocket dial.
func DialGame(serverURL string) (*GameClient, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	c := &GameClient{
		conn:    conn,
		pending: make(map[int64]chan json.RawMessage),
		Events:  make(chan protocol.ServerMessage, 64),
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close shuts the connection down.
func (c *GameClient) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// Emit sends one client event.
func (c *GameClient) Emit(event protocol.EventName, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(protocol.Envelope{Event: event, Data: raw})
}

// Ask performs one ask-server round trip. It fails with ErrNoResponse after
// the fixed budget; the registration is dropped first so a late response
// cannot be applied.
func (c *GameClient) Ask(signal protocol.Signal) (json.RawMessage, error) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan json.RawMessage, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.Emit(protocol.EvtAskServer, protocol.Ask{Signal: signal, ID: id}); err != nil {
		c.dropPending(id)
		return nil, err
	}

	select {
	case data := <-ch:
		return data, nil
	case <-time.After(askTimeout):
		c.dropPending(id)
		return nil, ErrNoResponse
	case <-c.closed:
		c.dropPending(id)
		return nil, errors.New("connection closed")
	}
}

func (c *GameClient) dropPending(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// WaitFor blocks until one of the named events arrives, returning it. An
// error event fails the wait.
func (c *GameClient) WaitFor(timeout time.Duration, events ...protocol.EventName) (protocol.ServerMessage, error) {
	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-c.Events:
			if !ok {
				return protocol.ServerMessage{}, errors.New("connection closed")
			}
			if msg.Event == protocol.EvtError {
				return msg, fmt.Errorf("server error: %v", msg.Data)
			}
			for _, want := range events {
				if msg.Event == want {
					return msg, nil
				}
			}
		case <-deadline:
			return protocol.ServerMessage{}, ErrNoResponse
		}
	}
}

func (c *GameClient) readLoop() {
	defer func() {
		c.Close()
		close(c.Events)
	}()

	for {
		var frame struct {
			Event protocol.EventName `json:"event"`
			Data  json.RawMessage    `json:"data"`
		}
		if err := c.conn.ReadJSON(&frame); err != nil {
			return
		}

		if frame.Event == protocol.EvtResponse {
			var resp struct {
				ID   int64           `json:"id"`
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(frame.Data, &resp); err != nil {
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.ID]
			if ok {
				delete(c.pending, resp.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- resp.Data
			}
			// An unmatched id is a late response; drop it.
			continue
		}

		var data any
		if len(frame.Data) > 0 {
			_ = json.Unmarshal(frame.Data, &data)
		}
		select {
		case c.Events <- protocol.ServerMessage{Event: frame.Event, Data: data}:
		default:
			// Watcher is not draining; drop rather than block the reader.
		}
	}
}
