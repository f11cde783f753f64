package search

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewIndex(logs.GetLoggerFromLevel(slog.LevelDebug), writer)
}

func message(from, to, content string) domain.Message {
	return domain.Message{
		ID: uuid.New(), SenderID: from, ReceiverID: to, Content: content,
		Type: domain.MessageText, Timestamp: time.Now().UTC(),
	}
}

func TestIndex_Search_Is_Scoped_To_Conversation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	ours := message("alice", "bob", "meet at the station tomorrow")
	reply := message("bob", "alice", "which station")
	theirs := message("alice", "carol", "the station is closed")
	for _, m := range []domain.Message{ours, reply, theirs} {
		req.NoError(index.Consume(ctx, event.New(event.MessageStored, m)))
	}

	// When bob searches his conversation with alice
	ids, err := index.Search(ctx, "bob", "alice", "station", 10)

	// Then only that conversation matches, in both directions
	req.NoError(err)
	req.ElementsMatch([]uuid.UUID{ours.ID, reply.ID}, ids)
}

func TestIndex_Follows_Edits_Deletes_And_Clears(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	m := message("alice", "bob", "old wording")
	other := message("alice", "bob", "keep wording")
	req.NoError(index.Consume(ctx, event.New(event.MessageStored, m)))
	req.NoError(index.Consume(ctx, event.New(event.MessageStored, other)))

	// Given an edit
	m.Content = "new phrasing"
	req.NoError(index.Consume(ctx, event.New(event.MessageChanged, m)))
	ids, err := index.Search(ctx, "alice", "bob", "old", 10)
	req.NoError(err)
	req.Empty(ids)
	ids, err = index.Search(ctx, "alice", "bob", "phrasing", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{m.ID}, ids)

	// Given a soft delete
	m.IsDeleted = true
	req.NoError(index.Consume(ctx, event.New(event.MessageChanged, m)))
	ids, err = index.Search(ctx, "alice", "bob", "phrasing", 10)
	req.NoError(err)
	req.Empty(ids)

	// Given a clear
	req.NoError(index.Consume(ctx, event.New(event.MessagesCleared, event.ClearedPayload{
		UserA: "alice", UserB: "bob", IDs: []uuid.UUID{m.ID, other.ID},
	})))
	ids, err = index.Search(ctx, "alice", "bob", "wording", 10)
	req.NoError(err)
	req.Empty(ids)
}

func TestIndex_Ignores_Unrelated_Events(t *testing.T) {
	req := require.New(t)

	req.NoError(newIndex(t).Consume(context.Background(), event.New(event.UserTyping, nil)))
}

func TestConversationKey_Order_Independent(t *testing.T) {
	req := require.New(t)

	req.Equal(conversationKey("a", "b"), conversationKey("b", "a"))
	req.NotEqual(conversationKey("a:b", "c"), conversationKey("a", "b:c"))
}
