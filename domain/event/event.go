// Package event defines what the server pushes to live connections and to
// the permanent sinks behind the fanout worker.
package event

import (
	"chat-signal/domain"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

// Pushed to clients.
const (
	ReceiveMessage    Type = "receive-message"
	MessageBlocked    Type = "message-blocked"
	MessageFailed     Type = "message-failed"
	MessageDeleted    Type = "message-deleted"
	MessageEdited     Type = "message-edited"
	MessageReadUpdate Type = "message-read-update"
	UserTyping        Type = "user-typing"
	UserStatusChanged Type = "user-status-changed"
	ContactsUpdated   Type = "contacts-updated"
	IncomingCall      Type = "incoming-call"
	CallAccepted      Type = "call-accepted"
	CallRejected      Type = "call-rejected"
	CallEnded         Type = "call-ended"
	CallBusy          Type = "call-busy"
	CallUnavailable   Type = "call-unavailable"
	Offer             Type = "offer"
	Answer            Type = "answer"
	IceCandidate      Type = "ice-candidate"
	UserJoined        Type = "user-joined"
	UserLeft          Type = "user-left"
	RoomUsers         Type = "room-users"
)

// Internal to the fanout pipeline, never written to a socket.
const (
	MessageStored   Type = "message-stored"
	MessageChanged  Type = "message-changed"
	MessagesCleared Type = "messages-cleared"
)

// Event is the envelope written on the wire as {"event": ..., "data": ...}.
type Event struct {
	Type      Type      `json:"event"`
	CreatedAt time.Time `json:"-"`
	Payload   any       `json:"data"`
}

func New(t Type, payload any) Event {
	return Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}
}

// MessagePayload is a full message record; TempID is only set on the sender echo.
type MessagePayload struct {
	domain.Message
	TempID string `json:"tempId,omitempty"`
}

type MessageBlockedPayload struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

type MessageFailedPayload struct {
	TempID     string `json:"tempId,omitempty"`
	ReceiverID string `json:"receiverId"`
	Error      string `json:"error"`
}

type MessageDeletedPayload struct {
	MessageID uuid.UUID `json:"messageId"`
}

type MessageEditedPayload struct {
	MessageID uuid.UUID `json:"messageId"`
	Content   string    `json:"content"`
	EditedAt  time.Time `json:"editedAt"`
}

type MessageReadPayload struct {
	MessageID uuid.UUID `json:"messageId"`
	ReadAt    time.Time `json:"readAt"`
}

type TypingPayload struct {
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

type StatusPayload struct {
	UserID   string        `json:"userId"`
	Status   domain.Status `json:"status"`
	LastSeen time.Time     `json:"lastSeen"`
}

type ContactsUpdatedPayload struct {
	UserID string `json:"userId"`
}

type IncomingCallPayload struct {
	CallID     uuid.UUID       `json:"callId"`
	From       string          `json:"from"`
	FromUserID string          `json:"fromUserId"`
	CallType   domain.CallType `json:"callType"`
	CallerName string          `json:"callerName,omitempty"`
}

// CallPayload is shared by every call lifecycle notification after the ring.
type CallPayload struct {
	CallID     uuid.UUID `json:"callId,omitempty"`
	From       string    `json:"from,omitempty"`
	FromUserID string    `json:"fromUserId,omitempty"`
	ReceiverID string    `json:"receiverId,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

const (
	ReasonBusy         = "busy"
	ReasonRejected     = "rejected"
	ReasonHangup       = "hangup"
	ReasonDisconnected = "disconnected"
	ReasonOffline      = "offline"
)

// SignalPayload forwards an opaque WebRTC blob. The blob is keyed by its kind
// ("offer", "answer" or "candidate") so clients read it where they expect it.
type SignalPayload struct {
	Kind   domain.SignalKind
	From   string
	RoomID string
	Data   json.RawMessage
}

func (s SignalPayload) MarshalJSON() ([]byte, error) {
	out := map[string]any{"from": s.From}
	data := s.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	out[s.key()] = data
	if s.RoomID != "" {
		out["roomId"] = s.RoomID
	}
	return json.Marshal(out)
}

func (s SignalPayload) key() string {
	if s.Kind == domain.SignalCandidate {
		return "candidate"
	}
	return string(s.Kind)
}

// RoomMemberPayload announces a member joining or leaving a call room.
type RoomMemberPayload struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

// RoomUsersPayload lists the connection ids present in a room, joiner included.
type RoomUsersPayload struct {
	RoomID string   `json:"roomId"`
	Users  []string `json:"users"`
}

// ClearedPayload lists what a history wipe removed.
type ClearedPayload struct {
	UserA string
	UserB string
	IDs   []uuid.UUID
}
