// Package realtime coordinates session registration, room membership, event
// broadcast, and connection cleanup via the Hub type.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/realtime/internal/auth"
)

// registration carries a freshly authenticated client into the hub together
// with the identity the handshake resolved.
type registration struct {
	client   *Client
	identity auth.Identity
}

// Hub wires the session registry, room membership index, and broadcaster
// together. It is constructed in main and passed by reference to everything
// that needs it; there is no ambient global instance.
type Hub struct {
	registry    *Registry
	rooms       *RoomIndex
	broadcaster *Broadcaster
	log         zerolog.Logger

	register   chan *registration
	unregister chan *Client

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a hub with an empty registry and room index, ready to
// manage connections once Run is started.
func NewHub(log zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	registry := NewRegistry()
	rooms := NewRoomIndex()
	return &Hub{
		registry:    registry,
		rooms:       rooms,
		broadcaster: NewBroadcaster(registry, rooms, log),
		log:         log,
		register:    make(chan *registration),
		unregister:  make(chan *Client),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Run is the hub's main event loop, handling session registration and
// disconnect cleanup. It runs until Shutdown is called and should be started
// in its own goroutine. Event routing does not pass through this loop; it
// happens synchronously on each connection's read pump, which preserves
// per-sender delivery order.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeSessions()
			return

		case reg := <-h.register:
			h.admit(reg)

		case client := <-h.unregister:
			h.cleanup(client)
		}
	}
}

// admit creates the session for an authenticated client, moves it to the
// active state, and starts its pump goroutines.
func (h *Hub) admit(reg *registration) {
	session := h.registry.Create(reg.identity, reg.client)
	reg.client.session = session
	reg.client.state.Store(stateActive)

	h.log.Info().
		Str("session_id", session.ID).
		Str("user_id", reg.identity.ID).
		Str("username", reg.identity.Username).
		Int("sessions", h.registry.Len()).
		Msg("user connected")

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		reg.client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		reg.client.readPump()
	}()
}

// cleanup removes a disconnected client from every room it joined and
// destroys its session, as one step. Running it twice for the same client is
// harmless; transport close can race explicit leave requests.
func (h *Hub) cleanup(client *Client) {
	client.state.Store(stateClosed)
	if session := client.session; session != nil {
		h.rooms.Purge(session.ID)
		if h.registry.Destroy(session.ID) {
			h.log.Info().
				Str("session_id", session.ID).
				Str("username", session.Identity.Username).
				Int("sessions", h.registry.Len()).
				Msg("user disconnected")
		}
	}
	_ = client.Close()
}

// JoinRoom adds the session to a room. Idempotent.
func (h *Hub) JoinRoom(session *Session, key RoomKey) {
	h.rooms.Join(key, session.ID)
	session.trackJoin(key)
	h.log.Debug().
		Str("session_id", session.ID).
		Str("username", session.Identity.Username).
		Str("room", string(key)).
		Msg("joined room")
}

// LeaveRoom removes the session from a room. A no-op if it never joined.
func (h *Hub) LeaveRoom(session *Session, key RoomKey) {
	h.rooms.Leave(key, session.ID)
	session.trackLeave(key)
	h.log.Debug().
		Str("session_id", session.ID).
		Str("username", session.Identity.Username).
		Str("room", string(key)).
		Msg("left room")
}

// Route fans an event out to the other members of the room.
func (h *Hub) Route(senderID string, kind EventKind, room RoomKey, payload EventPayload) {
	h.broadcaster.Route(senderID, kind, room, payload)
}

// closeSessions closes every live transport during shutdown.
func (h *Hub) closeSessions() {
	sessions := h.registry.snapshot()
	h.log.Info().Int("sessions", len(sessions)).Msg("closing all client connections")
	for _, session := range sessions {
		_ = session.Transport.Close()
	}
}

// Shutdown stops the hub and waits for all connection goroutines to finish,
// or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info().Msg("initiating hub shutdown")
	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info().Msg("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn().Msg("hub shutdown timeout reached")
		return context.DeadlineExceeded
	}
}
