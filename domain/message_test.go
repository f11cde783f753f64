package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMessage_Mutations(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()
	msg := Message{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Content: "hi", Type: MessageText}

	req.True(msg.CanMutate("alice"))
	req.False(msg.CanMutate("bob"))
	req.True(msg.Involves("bob"))
	req.False(msg.Involves("carol"))

	// When the message is edited
	req.True(msg.Edit("hello", now))
	req.Equal("hello", msg.Content)
	req.True(msg.IsEdited)

	// When the message is deleted twice
	req.True(msg.SoftDelete(now))
	req.False(msg.SoftDelete(now))

	// Then editing a deleted message is a no-op
	req.False(msg.Edit("again", now))
	req.Equal("hello", msg.Content)

	// And the rendered version never shows the content
	req.Empty(msg.Rendered().Content)
	req.Equal("hello", msg.Content)
}

func TestMessage_MarkRead(t *testing.T) {
	req := require.New(t)
	msg := Message{SenderID: "alice", ReceiverID: "bob"}

	req.True(msg.MarkRead(time.Now()))
	req.NotNil(msg.ReadAt)
	req.False(msg.MarkRead(time.Now()))
}
