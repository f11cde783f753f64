package domain

import (
	"chat-signal/errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestValidate_SendMessageCommand(t *testing.T) {
	file := &FileDescriptor{URL: "/uploads/images/x.png", MimeType: "image/png"}
	tests := []struct {
		name    string
		cmd     SendMessageCommand
		wantErr bool
	}{
		{
			name: "text message",
			cmd:  SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Content: "hi", Type: MessageText},
		},
		{
			name: "image with file and no caption",
			cmd:  SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Type: MessageImage, File: file},
		},
		{
			name:    "missing receiver",
			cmd:     SendMessageCommand{SenderID: "alice", Content: "hi", Type: MessageText},
			wantErr: true,
		},
		{
			name:    "message to self",
			cmd:     SendMessageCommand{SenderID: "alice", ReceiverID: "alice", Content: "hi", Type: MessageText},
			wantErr: true,
		},
		{
			name:    "empty text",
			cmd:     SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Type: MessageText},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cmd:     SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Content: "hi", Type: "sticker"},
			wantErr: true,
		},
		{
			name:    "media without file",
			cmd:     SendMessageCommand{SenderID: "alice", ReceiverID: "bob", Content: "look", Type: MessageVideo},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := Validate(tt.cmd)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrValidation)
				return
			}
			req.NoError(err)
		})
	}
}

func TestValidate_CallAndMutationCommands(t *testing.T) {
	req := require.New(t)

	req.NoError(Validate(StartCallCommand{CallerID: "alice", CalleeID: "bob", CallType: CallVideo}))
	req.ErrorIs(Validate(StartCallCommand{CallerID: "alice", CalleeID: "bob", CallType: "hologram"}), errors.ErrValidation)
	req.ErrorIs(Validate(StartCallCommand{CallerID: "alice", CalleeID: "alice", CallType: CallAudio}), errors.ErrValidation)

	req.NoError(Validate(EditMessageCommand{MessageID: uuid.New(), UserID: "alice", Content: "fixed"}))
	req.ErrorIs(Validate(EditMessageCommand{UserID: "alice", Content: "fixed"}), errors.ErrValidation)
	req.ErrorIs(Validate(DeleteMessageCommand{MessageID: uuid.New()}), errors.ErrValidation)

	req.NoError(Validate(RelaySignalCommand{Kind: SignalOffer, To: "conn-1"}))
	req.ErrorIs(Validate(RelaySignalCommand{Kind: SignalOffer}), errors.ErrValidation)
}
