package realtime

import (
	"testing"

	"github.com/taskboard/realtime/internal/auth"
)

// TestRegistryCreateAssignsUniqueIDs verifies that each session gets a fresh
// process-unique ID even for the same identity.
func TestRegistryCreateAssignsUniqueIDs(t *testing.T) {
	registry := NewRegistry()
	alice := auth.Identity{ID: "u1", Username: "alice"}

	first := registry.Create(alice, &fakeTransport{})
	second := registry.Create(alice, &fakeTransport{})

	if first.ID == "" || second.ID == "" {
		t.Fatal("Expected non-empty session IDs")
	}
	if first.ID == second.ID {
		t.Errorf("Expected distinct session IDs, both were %s", first.ID)
	}
	if registry.Len() != 2 {
		t.Errorf("Expected 2 live sessions, got %d", registry.Len())
	}
}

// TestRegistryGetAndDestroy verifies lookup of live sessions and their
// removal on destroy.
func TestRegistryGetAndDestroy(t *testing.T) {
	registry := NewRegistry()
	session := registry.Create(auth.Identity{ID: "u1"}, &fakeTransport{})

	got, ok := registry.Get(session.ID)
	if !ok || got != session {
		t.Fatalf("Expected to find session %s", session.ID)
	}

	if !registry.Destroy(session.ID) {
		t.Error("Expected first destroy to report removal")
	}
	if _, ok := registry.Get(session.ID); ok {
		t.Error("Expected session gone after destroy")
	}
}

// TestRegistryDoubleDestroyIsNoOp verifies that destroying a session twice
// is silent; transport close can race other cleanup paths.
func TestRegistryDoubleDestroyIsNoOp(t *testing.T) {
	registry := NewRegistry()
	session := registry.Create(auth.Identity{ID: "u1"}, &fakeTransport{})

	registry.Destroy(session.ID)
	if registry.Destroy(session.ID) {
		t.Error("Expected second destroy to be a no-op")
	}
	if registry.Destroy("never-existed") {
		t.Error("Expected destroy of unknown session to be a no-op")
	}
}

// TestSessionRoomTracking verifies that a session's own view of its rooms
// follows join and leave.
func TestSessionRoomTracking(t *testing.T) {
	session := newSession(auth.Identity{ID: "u1"}, &fakeTransport{})
	room := RoomKeyForProject("42")

	session.trackJoin(room)
	session.trackJoin(room)
	if rooms := session.Rooms(); len(rooms) != 1 || rooms[0] != room {
		t.Errorf("Expected [%s], got %v", room, rooms)
	}

	session.trackLeave(room)
	if rooms := session.Rooms(); len(rooms) != 0 {
		t.Errorf("Expected no rooms, got %v", rooms)
	}
}
