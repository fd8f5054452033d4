package realtime

import "testing"

// TestRoomKeyForProject verifies the room key derivation for project rooms.
func TestRoomKeyForProject(t *testing.T) {
	if key := RoomKeyForProject("42"); key != RoomKey("project-42") {
		t.Errorf("Expected project-42, got %s", key)
	}
}

// TestJoinIdempotent verifies that joining a room twice leaves the member
// set unchanged.
func TestJoinIdempotent(t *testing.T) {
	index := NewRoomIndex()
	room := RoomKeyForProject("42")

	index.Join(room, "s1")
	index.Join(room, "s1")

	if members := index.MembersOf(room); len(members) != 1 {
		t.Errorf("Expected 1 member after duplicate join, got %d", len(members))
	}
}

// TestLeaveNotJoinedIsNoOp verifies that leaving a room the session never
// joined changes nothing and raises no error.
func TestLeaveNotJoinedIsNoOp(t *testing.T) {
	index := NewRoomIndex()
	room := RoomKeyForProject("42")
	index.Join(room, "s1")

	index.Leave(room, "s2")
	index.Leave(RoomKeyForProject("7"), "s1")

	if members := index.MembersOf(room); len(members) != 1 || members[0] != "s1" {
		t.Errorf("Expected [s1], got %v", members)
	}
	if count := index.RoomCount(); count != 1 {
		t.Errorf("Expected 1 room, got %d", count)
	}
}

// TestPurgeRemovesFromAllRooms verifies that purging a session removes it
// from every room at once, and is safe for a session in zero rooms.
func TestPurgeRemovesFromAllRooms(t *testing.T) {
	index := NewRoomIndex()
	room42 := RoomKeyForProject("42")
	room7 := RoomKeyForProject("7")

	index.Join(room42, "bob")
	index.Join(room7, "bob")
	index.Join(room42, "alice")

	index.Purge("bob")

	for _, room := range []RoomKey{room42, room7} {
		for _, member := range index.MembersOf(room) {
			if member == "bob" {
				t.Errorf("Expected bob purged from %s", room)
			}
		}
	}
	if members := index.MembersOf(room42); len(members) != 1 || members[0] != "alice" {
		t.Errorf("Expected [alice] in %s, got %v", room42, members)
	}

	index.Purge("never-joined")
}

// TestEmptyRoomsAreGarbageCollected verifies lazy creation and removal of
// room entries when the last member leaves or is purged.
func TestEmptyRoomsAreGarbageCollected(t *testing.T) {
	index := NewRoomIndex()
	if count := index.RoomCount(); count != 0 {
		t.Fatalf("Expected no rooms initially, got %d", count)
	}

	room := RoomKeyForProject("42")
	index.Join(room, "s1")
	if count := index.RoomCount(); count != 1 {
		t.Fatalf("Expected 1 room after join, got %d", count)
	}

	index.Leave(room, "s1")
	if count := index.RoomCount(); count != 0 {
		t.Errorf("Expected room removed after last leave, got %d", count)
	}

	index.Join(room, "s1")
	index.Purge("s1")
	if count := index.RoomCount(); count != 0 {
		t.Errorf("Expected room removed after purge, got %d", count)
	}
}

// TestMembersOfReturnsSnapshot verifies that the returned member set is a
// copy unaffected by later mutations.
func TestMembersOfReturnsSnapshot(t *testing.T) {
	index := NewRoomIndex()
	room := RoomKeyForProject("42")
	index.Join(room, "s1")
	index.Join(room, "s2")

	snapshot := index.MembersOf(room)
	index.Leave(room, "s1")
	index.Leave(room, "s2")

	if len(snapshot) != 2 {
		t.Errorf("Expected snapshot of 2 members, got %v", snapshot)
	}
}
