package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/protocol"
	"github.com/tetranet/tetranet/internal/services/lobby"
)

// Handler upgrades HTTP requests to the game's event channel and dispatches
// envelopes to the lobby controller. Events from one connection are handled
// in arrival order on that connection's read loop.
type Handler struct {
	lobby    *lobby.Controller
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(ctrl *lobby.Controller, logger *slog.Logger) *Handler {
	return &Handler{
		lobby:  ctrl,
		logger: logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The client bundle is served from arbitrary hosts in front of us.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := newClient(model.ConnID(uuid.NewString()), conn, h.logger)
	h.logger.Info("connection opened", slog.String("conn", string(c.id)))

	go c.writePump()
	h.readLoop(r.Context(), c)
}

// readLoop drives the connection until it closes. A disconnect runs the
// same cleanup as an explicit return: timer cancelled, seat released.
func (h *Handler) readLoop(ctx context.Context, c *client) {
	defer func() {
		c.close()
		h.lobby.Leave(c.id)
		h.logger.Info("connection closed", slog.String("conn", string(c.id)))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("connection dropped", slog.String("error", err.Error()))
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.Send(protocol.EvtError, "malformed message")
			continue
		}
		h.dispatch(ctx, c, env)
	}
}

func (h *Handler) dispatch(ctx context.Context, c *client, env protocol.Envelope) {
	switch env.Event {
	case protocol.EvtCreateLobby:
		var username string
		if err := json.Unmarshal(env.Data, &username); err != nil {
			c.Send(protocol.EvtError, "malformed message")
			return
		}
		g, err := h.lobby.CreateLobby(c.id, c, username)
		if err != nil {
			c.Send(protocol.EvtError, err.Error())
			return
		}
		c.Send(protocol.EvtLobbyJoin, protocol.LobbyJoin{
			Seed:     string(g.Seed),
			Username: username,
		})

	case protocol.EvtJoinUser:
		var req protocol.JoinUser
		if err := json.Unmarshal(env.Data, &req); err != nil {
			c.Send(protocol.EvtError, "malformed message")
			return
		}
		g, err := h.lobby.Join(c.id, c, model.Seed(req.Seed), req.Username)
		if errors.Is(err, model.ErrUsernameTaken) {
			c.Send(protocol.EvtGoTo, protocol.GoTo{Path: "/", Message: err.Error()})
			return
		}
		if err != nil {
			c.Send(protocol.EvtError, err.Error())
			return
		}
		c.Send(protocol.EvtLobbyJoin, protocol.LobbyJoin{
			Seed:     string(g.Seed),
			Username: req.Username,
		})

	case protocol.EvtLaunchGame:
		if err := h.lobby.LaunchGame(c.id); err != nil {
			c.Send(protocol.EvtError, err.Error())
		}

	case protocol.EvtLaunch:
		h.lobby.Ready(c.id)

	case protocol.EvtInput:
		var in protocol.Input
		if err := json.Unmarshal(env.Data, &in); err != nil {
			c.Send(protocol.EvtError, "malformed message")
			return
		}
		if sess := h.lobby.Session(c.id); sess != nil {
			sess.HandleInput(in.Key)
		}

	case protocol.EvtAskServer:
		var ask protocol.Ask
		if err := json.Unmarshal(env.Data, &ask); err != nil {
			c.Send(protocol.EvtError, "malformed message")
			return
		}
		h.answer(c, ask)

	case protocol.EvtGetGrids:
		c.Send(protocol.EvtGrids, h.lobby.GetGrids(c.id))

	case protocol.EvtFinish:
		var fin protocol.Finish
		if err := json.Unmarshal(env.Data, &fin); err != nil {
			c.Send(protocol.EvtError, "malformed message")
			return
		}
		h.lobby.Finish(ctx, c.id, fin.Score)

	case protocol.EvtReturnLobby:
		h.lobby.ReturnToLobby(c.id)

	case protocol.EvtReturn:
		h.lobby.Leave(c.id)

	default:
		c.Send(protocol.EvtError, fmt.Sprintf("unknown event %q", env.Event))
	}
}

// answer resolves one ask-server request. Every ask gets exactly one
// response carrying the caller's correlation id; asks that depend on absent
// state additionally surface a protocol error and answer with a zero value.
func (h *Handler) answer(c *client, ask protocol.Ask) {
	respond := func(data any) {
		c.Send(protocol.EvtResponse, protocol.Response{
			Signal: ask.Signal,
			ID:     ask.ID,
			Data:   data,
		})
	}

	switch ask.Signal {
	case protocol.SigGameExist:
		respond(h.lobby.GameExist(c.id))

	case protocol.SigGetUsername:
		respond(h.lobby.Username(c.id))

	case protocol.SigGetHost:
		respond(h.lobby.IsHost(c.id))

	case protocol.SigGetPlayerList:
		respond(h.lobby.PlayerList(c.id))

	case protocol.SigStartGame:
		if err := h.lobby.StartSession(c.id); err != nil {
			c.Send(protocol.EvtError, err.Error())
			respond(false)
			return
		}
		respond(true)

	case protocol.SigInitGrid:
		sess := h.lobby.Session(c.id)
		if sess == nil {
			c.Send(protocol.EvtError, model.ErrNoSession.Error())
			respond(nil)
			return
		}
		respond(sess.InitGrid())

	case protocol.SigInitPiece:
		sess := h.lobby.Session(c.id)
		if sess == nil {
			c.Send(protocol.EvtError, model.ErrNoSession.Error())
			respond(nil)
			return
		}
		respond(sess.PreviewFlat())

	case protocol.SigStopGame:
		if err := h.lobby.StopSession(c.id); err != nil {
			c.Send(protocol.EvtError, err.Error())
		}
		respond(false)

	default:
		if strings.HasPrefix(string(ask.Signal), "/") {
			ok, msg := h.lobby.RouteCheck(c.id, string(ask.Signal))
			if !ok {
				c.Send(protocol.EvtGoTo, protocol.GoTo{Path: "/", Message: msg})
			}
			respond(ok)
			return
		}
		c.Send(protocol.EvtError, fmt.Sprintf("unknown signal %q", ask.Signal))
	}
}
