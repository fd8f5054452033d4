// Package realtime routes events from one session to every other member of
// a room, stamping the sender's verified identity on each delivery.
package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskboard/realtime/internal/auth"
)

// Broadcaster fans a session's events out to the other members of a room.
// Delivery is best-effort and at-most-once: a recipient that cannot accept
// the message is logged and disconnected, the remaining recipients still
// receive, and the sender is never told.
type Broadcaster struct {
	registry *Registry
	rooms    *RoomIndex
	log      zerolog.Logger
}

// NewBroadcaster creates a broadcaster over the given registry and room index.
func NewBroadcaster(registry *Registry, rooms *RoomIndex, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, rooms: rooms, log: log}
}

// Route delivers the event to every member of the room except the sender.
// The sender never receives its own event back, even while a member of the
// room. Whether the sender actually joined the room is not checked here;
// room keys are only handed out by the access-controlled CRUD layer.
func (b *Broadcaster) Route(senderID string, kind EventKind, room RoomKey, payload EventPayload) {
	sender, ok := b.registry.Get(senderID)
	if !ok {
		return
	}

	envelope, err := buildEnvelope(sender.Identity, kind, payload)
	if err != nil {
		b.log.Error().Err(err).Str("session_id", senderID).Msg("failed to build event envelope")
		return
	}

	for _, memberID := range b.rooms.MembersOf(room) {
		if memberID == senderID {
			continue
		}
		member, ok := b.registry.Get(memberID)
		if !ok {
			continue
		}
		if err := member.Transport.Send(envelope); err != nil {
			b.log.Warn().
				Err(err).
				Str("session_id", memberID).
				Str("room", string(room)).
				Str("event", kind.String()).
				Msg("dropping undeliverable event; disconnecting recipient")
			_ = member.Transport.Close()
		}
	}
}

// buildEnvelope produces the delivery frame for one event kind, attaching
// the sender identity resolved at handshake.
func buildEnvelope(identity auth.Identity, kind EventKind, payload EventPayload) ([]byte, error) {
	sender := senderInfo{
		ID:        identity.ID,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}

	var data any
	switch kind {
	case EventTaskUpdated:
		data = taskUpdatedDelivery{Task: payload.Task, UpdatedBy: sender}
	case EventCommentAdded:
		data = commentAddedDelivery{TaskID: payload.TaskID, Comment: payload.Comment, Author: sender}
	case EventTyping:
		data = typingDelivery{UserID: sender.ID, Username: sender.Username, TaskID: payload.TaskID}
	case EventStopTyping:
		data = stopTypingDelivery{UserID: sender.ID, TaskID: payload.TaskID}
	default:
		return nil, fmt.Errorf("unknown event kind %d", kind)
	}

	return json.Marshal(serverFrame{Type: kind.deliveryType(), Data: data})
}
