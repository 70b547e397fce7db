package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 64
)

// client is one websocket connection. Outbound events go through a buffered
// channel drained by writePump, so lobby broadcasts never block on a slow
// peer; a full buffer drops the event rather than stall the room.
type client struct {
	id     model.ConnID
	conn   *websocket.Conn
	logger *slog.Logger

	send chan protocol.ServerMessage
	done chan struct{}
	once sync.Once
}

func newClient(id model.ConnID, conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		id:     id,
		conn:   conn,
		logger: logger.With(slog.String("component", "ws"), slog.String("conn", string(id))),
		send:   make(chan protocol.ServerMessage, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Send queues an outbound event. It never blocks.
func (c *client) Send(event protocol.EventName, data any) {
	msg := protocol.ServerMessage{Event: event, Data: data}
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warn("send buffer full, dropping event",
			slog.String("event", string(event)),
		)
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
