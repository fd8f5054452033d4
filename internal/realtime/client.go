// Package realtime manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package realtime

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/taskboard/realtime/internal/config"
)

// Connection lifecycle states. A connection starts in connecting, moves to
// authenticated once the credential is verified, becomes active when its
// session is registered, and ends closed. Frames outside active are
// silently discarded.
const (
	stateConnecting int32 = iota
	stateAuthenticated
	stateActive
	stateClosed
)

const (
	readWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	pingInterval   = 54 * time.Second
	sendBufferSize = 256
)

var (
	errTransportClosed = errors.New("realtime: transport closed")
	errSendBufferFull  = errors.New("realtime: send buffer full")
)

// Client is the WebSocket transport of one session. It owns the connection's
// pump goroutines and implements Transport for the broadcaster.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	log  zerolog.Logger

	send chan []byte
	done chan struct{}

	session   *Session
	state     atomic.Int32
	closeOnce sync.Once

	maxMessageSize int64
	limiter        *rate.Limiter
}

func newClient(conn *websocket.Conn, hub *Hub, cfg config.Config, log zerolog.Logger) *Client {
	conn.SetReadLimit(cfg.MaxMessageSize)

	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.MessagesPerSecond), cfg.RateLimit.Burst)
	}

	c := &Client{
		conn:           conn,
		hub:            hub,
		log:            log,
		send:           make(chan []byte, sendBufferSize),
		done:           make(chan struct{}),
		maxMessageSize: cfg.MaxMessageSize,
		limiter:        limiter,
	}
	c.state.Store(stateAuthenticated)
	return c
}

// Send queues a message for delivery. It never blocks: a closed transport or
// a full buffer is reported as an error and the message is dropped.
func (c *Client) Send(message []byte) error {
	if c.state.Load() != stateActive {
		return errTransportClosed
	}
	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return errTransportClosed
	default:
		return errSendBufferFull
	}
}

// Close tears the connection down. Safe to call multiple times and from any
// goroutine; only the first call has an effect.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.state.Store(stateClosed)
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
	return nil
}

// setupReadConnection configures the read deadline and pong handler.
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
		c.log.Warn().Err(err).Msg("failed to set initial read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
			_ = c.Close()
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if !c.allowMessage() {
			continue
		}
		c.dispatch(raw)
	}
}

// allowMessage applies the per-connection rate limit. Messages over the
// limit are discarded; the connection stays open.
func (c *Client) allowMessage() bool {
	if c.limiter != nil && !c.limiter.Allow() {
		c.log.Warn().Msg("rate limit exceeded; discarding message")
		return false
	}
	return true
}

// dispatch decodes an inbound frame and applies it. Malformed frames and
// unknown types are dropped with a log entry and never affect the
// connection or other sessions.
func (c *Client) dispatch(raw []byte) {
	if c.state.Load() != stateActive {
		return
	}

	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.log.Debug().Err(err).Msg("dropping malformed frame")
		return
	}

	switch frame.Type {
	case typeJoinRoom:
		var req roomRequest
		if !c.decodePayload(frame.Type, frame.Data, &req) || req.ProjectID == "" {
			return
		}
		c.hub.JoinRoom(c.session, RoomKeyForProject(req.ProjectID))

	case typeLeaveRoom:
		var req roomRequest
		if !c.decodePayload(frame.Type, frame.Data, &req) || req.ProjectID == "" {
			return
		}
		c.hub.LeaveRoom(c.session, RoomKeyForProject(req.ProjectID))

	case typeTaskUpdated:
		var req taskUpdatedRequest
		if !c.decodePayload(frame.Type, frame.Data, &req) || req.ProjectID == "" {
			return
		}
		c.hub.Route(c.session.ID, EventTaskUpdated, RoomKeyForProject(req.ProjectID), EventPayload{Task: req.Task})

	case typeCommentAdded:
		var req commentAddedRequest
		if !c.decodePayload(frame.Type, frame.Data, &req) || req.ProjectID == "" {
			return
		}
		c.hub.Route(c.session.ID, EventCommentAdded, RoomKeyForProject(req.ProjectID), EventPayload{TaskID: req.TaskID, Comment: req.Comment})

	case typeTyping:
		var req typingRequest
		if !c.decodePayload(frame.Type, frame.Data, &req) || req.ProjectID == "" {
			return
		}
		c.hub.Route(c.session.ID, EventTyping, RoomKeyForProject(req.ProjectID), EventPayload{TaskID: req.TaskID})

	case typeStopTyping:
		var req typingRequest
		if !c.decodePayload(frame.Type, frame.Data, &req) || req.ProjectID == "" {
			return
		}
		c.hub.Route(c.session.ID, EventStopTyping, RoomKeyForProject(req.ProjectID), EventPayload{TaskID: req.TaskID})

	default:
		c.log.Debug().Str("type", frame.Type).Msg("dropping frame with unknown type")
	}
}

func (c *Client) decodePayload(frameType string, data json.RawMessage, dst any) bool {
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Debug().Err(err).Str("type", frameType).Msg("dropping malformed event payload")
		return false
	}
	return true
}

// logReadError classifies the error that ended the read loop.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn().Int64("max_message_size", c.maxMessageSize).Msg("message exceeded maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Debug().Err(err).Msg("client disconnected")
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.log.Debug().Err(err).Msg("connection closed")
	default:
		c.log.Warn().Err(err).Msg("websocket read error")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Warn().Err(err).Msg("websocket write error")
				}
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
