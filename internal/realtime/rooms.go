// Package realtime maintains the room membership index, the shared mapping
// from room keys to joined sessions that event fan-out is built on.
package realtime

import "sync"

// RoomKey identifies a fan-out group. Keys are opaque strings compared only
// for equality.
type RoomKey string

// RoomKeyForProject derives the room key for a project's collaboration room.
func RoomKeyForProject(projectID string) RoomKey {
	return RoomKey("project-" + projectID)
}

// RoomIndex tracks which sessions are joined to which rooms. Entries are
// created lazily on first join and removed when the last member leaves.
// Any verified session may join any room it names; access to the project
// behind a room key is enforced by the CRUD layer that hands the key out.
type RoomIndex struct {
	mu    sync.RWMutex
	rooms map[RoomKey]map[string]struct{}
}

// NewRoomIndex creates an empty room index.
func NewRoomIndex() *RoomIndex {
	return &RoomIndex{rooms: make(map[RoomKey]map[string]struct{})}
}

// Join adds the session to the room. Joining a room already joined is a
// no-op, never a duplicate.
func (ri *RoomIndex) Join(key RoomKey, sessionID string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	members, ok := ri.rooms[key]
	if !ok {
		members = make(map[string]struct{})
		ri.rooms[key] = members
	}
	members[sessionID] = struct{}{}
}

// Leave removes the session from the room. Leaving a room not joined is a
// no-op.
func (ri *RoomIndex) Leave(key RoomKey, sessionID string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	members, ok := ri.rooms[key]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(ri.rooms, key)
	}
}

// MembersOf returns a complete snapshot of the room's members. Callers never
// observe a partially updated member set.
func (ri *RoomIndex) MembersOf(key RoomKey) []string {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	members := ri.rooms[key]
	snapshot := make([]string, 0, len(members))
	for sessionID := range members {
		snapshot = append(snapshot, sessionID)
	}
	return snapshot
}

// Purge removes the session from every room in one atomic step. It is safe
// to call for a session in zero rooms and is used by disconnect cleanup.
func (ri *RoomIndex) Purge(sessionID string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	for key, members := range ri.rooms {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(ri.rooms, key)
		}
	}
}

// RoomCount returns the number of rooms with at least one member.
func (ri *RoomIndex) RoomCount() int {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return len(ri.rooms)
}
