package websocket

import (
	"chat-signal/domain"
	"chat-signal/errors"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Envelope is the frame shape in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type sendMessageData struct {
	SenderID   string                 `json:"senderId"`
	ReceiverID string                 `json:"receiverId"`
	Content    string                 `json:"content"`
	Type       domain.MessageType     `json:"type"`
	TempID     string                 `json:"tempId"`
	File       *domain.FileDescriptor `json:"file"`
}

type messageRefData struct {
	MessageID uuid.UUID `json:"messageId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
}

type typingData struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

type startCallData struct {
	ReceiverID string          `json:"receiverId"`
	FromUserID string          `json:"fromUserId"`
	CallType   domain.CallType `json:"callType"`
	CallerName string          `json:"callerName"`
}

type peerData struct {
	FromUserID string `json:"fromUserId"`
}

type roomData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type signalData struct {
	To        string          `json:"to"`
	RoomID    string          `json:"roomId"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}

// Decode turns one inbound frame into a command. Payload checks beyond
// shape are left to the services.
func Decode(frame []byte) (domain.Command, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed frame: %v", errors.ErrValidation, err)
	}

	switch env.Event {
	case "register-online", "user-online":
		userID, err := decodeUserID(env.Data)
		if err != nil {
			return nil, err
		}
		return domain.RegisterOnlineCommand{UserID: userID}, nil

	case "send-message":
		var d sendMessageData
		if err := decode(env, &d); err != nil {
			return nil, err
		}
		if d.Type == "" {
			d.Type = domain.MessageText
		}
		return domain.SendMessageCommand{
			SenderID:   d.SenderID,
			ReceiverID: d.ReceiverID,
			Content:    d.Content,
			Type:       d.Type,
			TempID:     d.TempID,
			File:       d.File,
		}, nil

	case "edit-message":
		var d messageRefData
		if err := decode(env, &d); err != nil {
			return nil, err
		}
		return domain.EditMessageCommand{MessageID: d.MessageID, UserID: d.UserID, Content: d.Content}, nil

	case "delete-message":
		var d messageRefData
		if err := decode(env, &d); err != nil {
			return nil, err
		}
		return domain.DeleteMessageCommand{MessageID: d.MessageID, UserID: d.UserID}, nil

	case "message-read":
		id, err := decodeMessageID(env.Data)
		if err != nil {
			return nil, err
		}
		return domain.MarkReadCommand{MessageID: id}, nil

	case "typing":
		var d typingData
		if err := decode(env, &d); err != nil {
			return nil, err
		}
		return domain.TypingCommand{SenderID: d.SenderID, ReceiverID: d.ReceiverID, IsTyping: d.IsTyping}, nil

	case "start-call":
		var d startCallData
		if err := decode(env, &d); err != nil {
			return nil, err
		}
		return domain.StartCallCommand{
			CallerID:   d.FromUserID,
			CalleeID:   d.ReceiverID,
			CallType:   d.CallType,
			CallerName: d.CallerName,
		}, nil

	case "accept-call":
		var d peerData
		if err := decodeOptional(env, &d); err != nil {
			return nil, err
		}
		return domain.AcceptCallCommand{UserID: d.FromUserID}, nil

	case "reject-call":
		var d peerData
		if err := decodeOptional(env, &d); err != nil {
			return nil, err
		}
		return domain.RejectCallCommand{UserID: d.FromUserID}, nil

	case "end-call":
		var d peerData
		if err := decodeOptional(env, &d); err != nil {
			return nil, err
		}
		return domain.EndCallCommand{UserID: d.FromUserID}, nil

	case "join-call":
		var d roomData
		if err := decode(env, &d); err != nil {
			return nil, err
		}
		return domain.JoinRoomCommand{RoomID: d.RoomID, UserID: d.UserID}, nil

	case "leave-call":
		var d roomData
		if err := decode(env, &d); err != nil {
			return nil, err
		}
		return domain.LeaveRoomCommand{RoomID: d.RoomID, UserID: d.UserID}, nil

	case "offer", "answer", "ice-candidate":
		var d signalData
		if err := decode(env, &d); err != nil {
			return nil, err
		}
		cmd := domain.RelaySignalCommand{Kind: domain.SignalKind(env.Event), To: d.To, RoomID: d.RoomID}
		switch cmd.Kind {
		case domain.SignalOffer:
			cmd.Payload = d.Offer
		case domain.SignalAnswer:
			cmd.Payload = d.Answer
		default:
			cmd.Payload = d.Candidate
		}
		return cmd, nil

	default:
		return nil, fmt.Errorf("%w: unknown event %q", errors.ErrValidation, env.Event)
	}
}

func decode(env Envelope, target any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s without data", errors.ErrValidation, env.Event)
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrValidation, env.Event, err)
	}
	return nil
}

// decodeOptional accepts call control frames sent with no data at all.
func decodeOptional(env Envelope, target any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return decode(env, target)
}

// decodeUserID accepts either a bare string or {"userId": "..."}.
func decodeUserID(raw json.RawMessage) (string, error) {
	var userID string
	if err := json.Unmarshal(raw, &userID); err == nil {
		return strings.TrimSpace(userID), nil
	}
	var obj struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("%w: register-online expects a user id", errors.ErrValidation)
	}
	return strings.TrimSpace(obj.UserID), nil
}

// decodeMessageID accepts either a bare id or {"messageId": "..."}.
func decodeMessageID(raw json.RawMessage) (uuid.UUID, error) {
	var id uuid.UUID
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var obj messageRefData
	if err := json.Unmarshal(raw, &obj); err != nil {
		return uuid.Nil, fmt.Errorf("%w: message-read expects a message id", errors.ErrValidation)
	}
	return obj.MessageID, nil
}
