package domain

import (
	"chat-signal/errors"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Command is an inbound intent decoded from a live connection or a REST call.
type Command interface {
	Name() string
}

type RegisterOnlineCommand struct {
	UserID string `validate:"required"`
}

func (RegisterOnlineCommand) Name() string { return "register-online" }

type SendMessageCommand struct {
	SenderID   string          `validate:"required"`
	ReceiverID string          `validate:"required,nefield=SenderID"`
	Content    string          `validate:"required_without=File"`
	Type       MessageType     `validate:"required,oneof=text image audio video file"`
	TempID     string          `validate:"omitempty,max=128"`
	File       *FileDescriptor `validate:"required_unless=Type text"`
}

func (SendMessageCommand) Name() string { return "send-message" }

type EditMessageCommand struct {
	MessageID uuid.UUID `validate:"required"`
	UserID    string    `validate:"required"`
	Content   string    `validate:"required"`
}

func (EditMessageCommand) Name() string { return "edit-message" }

type DeleteMessageCommand struct {
	MessageID uuid.UUID `validate:"required"`
	UserID    string    `validate:"required"`
}

func (DeleteMessageCommand) Name() string { return "delete-message" }

type MarkReadCommand struct {
	MessageID uuid.UUID `validate:"required"`
	UserID    string
}

func (MarkReadCommand) Name() string { return "message-read" }

type TypingCommand struct {
	SenderID   string `validate:"required"`
	ReceiverID string `validate:"required"`
	IsTyping   bool
}

func (TypingCommand) Name() string { return "typing" }

type StartCallCommand struct {
	CallerID   string   `validate:"required"`
	CalleeID   string   `validate:"required,nefield=CallerID"`
	CallType   CallType `validate:"required,oneof=audio video"`
	CallerName string
}

func (StartCallCommand) Name() string { return "start-call" }

type AcceptCallCommand struct {
	UserID string `validate:"required"`
}

func (AcceptCallCommand) Name() string { return "accept-call" }

type RejectCallCommand struct {
	UserID string `validate:"required"`
}

func (RejectCallCommand) Name() string { return "reject-call" }

type EndCallCommand struct {
	UserID string `validate:"required"`
}

func (EndCallCommand) Name() string { return "end-call" }

type JoinRoomCommand struct {
	RoomID string `validate:"required"`
	UserID string `validate:"required"`
}

func (JoinRoomCommand) Name() string { return "join-call" }

type LeaveRoomCommand struct {
	RoomID string `validate:"required"`
	UserID string `validate:"required"`
}

func (LeaveRoomCommand) Name() string { return "leave-call" }

type SignalKind string

const (
	SignalOffer     SignalKind = "offer"
	SignalAnswer    SignalKind = "answer"
	SignalCandidate SignalKind = "ice-candidate"
)

// RelaySignalCommand carries an opaque WebRTC payload to another connection.
type RelaySignalCommand struct {
	Kind    SignalKind      `validate:"required,oneof=offer answer ice-candidate"`
	To      string          `validate:"required"`
	RoomID  string
	Payload json.RawMessage
}

func (c RelaySignalCommand) Name() string { return string(c.Kind) }

// Validate checks the struct tags of a command and wraps failures in ErrValidation.
func Validate(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}
