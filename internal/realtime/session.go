// Package realtime tracks each live connection as a Session bound to a
// verified identity, owned by the Registry for its whole lifetime.
package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/taskboard/realtime/internal/auth"
)

// Transport is the delivery side of a connection. Send must not block
// indefinitely; a failed send is reported to the caller and nothing else.
type Transport interface {
	Send(message []byte) error
	Close() error
}

// Session represents one authenticated live connection and the rooms it has
// joined. The identity is fixed at handshake time; routing code always reads
// the sender identity from here, never from client-supplied payload fields.
type Session struct {
	ID        string
	Identity  auth.Identity
	Transport Transport

	mu    sync.Mutex
	rooms map[RoomKey]struct{}
}

func newSession(identity auth.Identity, transport Transport) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Identity:  identity,
		Transport: transport,
		rooms:     make(map[RoomKey]struct{}),
	}
}

func (s *Session) trackJoin(key RoomKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[key] = struct{}{}
}

func (s *Session) trackLeave(key RoomKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, key)
}

// Rooms returns a snapshot of the rooms this session has joined.
func (s *Session) Rooms() []RoomKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]RoomKey, 0, len(s.rooms))
	for key := range s.rooms {
		keys = append(keys, key)
	}
	return keys
}

// Registry owns every live session. Sessions are created exactly once per
// successful handshake and destroyed exactly once on transport close;
// destroying an unknown session is a no-op because transport close can race
// with other cleanup paths.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create registers a new session for the given identity and transport,
// assigning it a fresh process-unique ID.
func (r *Registry) Create(identity auth.Identity, transport Transport) *Session {
	session := newSession(identity, transport)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return session
}

// Get returns the session with the given ID, if it is still live.
func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

// Destroy removes the session. It reports whether the session existed so
// callers can make double-destroy a silent no-op.
func (r *Registry) Destroy(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return false
	}
	delete(r.sessions, sessionID)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// snapshot returns all live sessions, used during shutdown.
func (r *Registry) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}
