// Package realtime defines the closed set of collaboration event kinds and
// the wire shapes exchanged with clients.
package realtime

import "encoding/json"

// EventKind identifies a collaboration event routed between sessions. The
// set is closed; routing dispatches on it with a single switch.
type EventKind int

const (
	// EventTaskUpdated signals that a task in the project changed.
	EventTaskUpdated EventKind = iota + 1
	// EventCommentAdded signals a new comment on a task.
	EventCommentAdded
	// EventTyping signals that the sender started typing on a task.
	EventTyping
	// EventStopTyping signals that the sender stopped typing.
	EventStopTyping
)

// Inbound request type names.
const (
	typeJoinRoom     = "join-room"
	typeLeaveRoom    = "leave-room"
	typeTaskUpdated  = "task-updated"
	typeCommentAdded = "comment-added"
	typeTyping       = "typing"
	typeStopTyping   = "stop-typing"
)

// Outbound delivery type names.
const (
	typeUserTyping     = "user-typing"
	typeUserStopTyping = "user-stop-typing"
)

// String returns the inbound wire name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventTaskUpdated:
		return typeTaskUpdated
	case EventCommentAdded:
		return typeCommentAdded
	case EventTyping:
		return typeTyping
	case EventStopTyping:
		return typeStopTyping
	default:
		return "unknown"
	}
}

// deliveryType returns the outbound wire name recipients see for the kind.
func (k EventKind) deliveryType() string {
	switch k {
	case EventTyping:
		return typeUserTyping
	case EventStopTyping:
		return typeUserStopTyping
	default:
		return k.String()
	}
}

// clientFrame is the envelope of every inbound message: a type name plus a
// type-specific data object.
type clientFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// serverFrame is the envelope of every outbound delivery.
type serverFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// roomRequest is the data of join-room and leave-room.
type roomRequest struct {
	ProjectID string `json:"projectId"`
}

// taskUpdatedRequest is the data of task-updated. The task body is opaque to
// this layer and forwarded verbatim.
type taskUpdatedRequest struct {
	ProjectID string          `json:"projectId"`
	Task      json.RawMessage `json:"task"`
}

// commentAddedRequest is the data of comment-added.
type commentAddedRequest struct {
	ProjectID string          `json:"projectId"`
	TaskID    string          `json:"taskId"`
	Comment   json.RawMessage `json:"comment"`
}

// typingRequest is the data of typing and stop-typing.
type typingRequest struct {
	ProjectID string `json:"projectId"`
	TaskID    string `json:"taskId"`
}

// EventPayload carries the client-supplied fields of an event through
// routing. Sender identity is deliberately not part of it; the broadcaster
// stamps identity from the Session.
type EventPayload struct {
	Task    json.RawMessage
	TaskID  string
	Comment json.RawMessage
}

// senderInfo is the identity stamp attached to deliveries. Its fields come
// from the identity verified at handshake, never from the client payload.
type senderInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type taskUpdatedDelivery struct {
	Task      json.RawMessage `json:"task"`
	UpdatedBy senderInfo      `json:"updatedBy"`
}

type commentAddedDelivery struct {
	TaskID  string          `json:"taskId"`
	Comment json.RawMessage `json:"comment"`
	Author  senderInfo      `json:"author"`
}

type typingDelivery struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	TaskID   string `json:"taskId"`
}

type stopTypingDelivery struct {
	UserID string `json:"userId"`
	TaskID string `json:"taskId"`
}
