package repositories

import (
	"chat-signal/domain"
	"chat-signal/errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMessage(sender, receiver, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		Type:       domain.MessageText,
		Timestamp:  at,
		Delivered:  true,
	}
}

func Test_Conversation_Is_Shared_And_Ordered(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	at := time.Now().UTC()

	// Given three messages stored out of order, and one from another conversation
	third := newMessage("alice", "bob", "third", at.Add(2*time.Minute))
	first := newMessage("alice", "bob", "first", at)
	second := newMessage("bob", "alice", "second", at.Add(time.Minute))
	other := newMessage("alice", "carol", "elsewhere", at)
	for _, m := range []domain.Message{third, first, second, other} {
		req.NoError(repository.StoreMessage(m))
	}

	// When both participants read the conversation
	fromAlice, err := repository.GetConversation("alice", "bob")
	req.NoError(err)
	fromBob, err := repository.GetConversation("bob", "alice")
	req.NoError(err)

	// Then they see the same chronological history
	req.Equal(fromAlice, fromBob)
	req.Len(fromAlice, 3)
	req.Equal([]string{"first", "second", "third"},
		[]string{fromAlice[0].Content, fromAlice[1].Content, fromAlice[2].Content})
}

func Test_Conversation_Ids_With_Separator_Do_Not_Collide(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	at := time.Now().UTC()

	req.NoError(repository.StoreMessage(newMessage("a:b", "c", "one", at)))
	req.NoError(repository.StoreMessage(newMessage("a", "b:c", "two", at)))

	history, err := repository.GetConversation("a:b", "c")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("one", history[0].Content)
}

func Test_Conversation_Separator_In_Second_Id_Stays_Isolated(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	at := time.Now().UTC()

	// Given x talks to y and, separately, to "y:z"
	req.NoError(repository.StoreMessage(newMessage("x", "y", "mine", at)))
	req.NoError(repository.StoreMessage(newMessage("x", "y:z", "someone else", at)))

	// Then the history of (x, y) only holds its own message
	history, err := repository.GetConversation("x", "y")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("mine", history[0].Content)

	// And clearing (x, y) leaves the other conversation untouched
	removed, err := repository.ClearConversation("x", "y")
	req.NoError(err)
	req.Len(removed, 1)
	other, err := repository.GetConversation("x", "y:z")
	req.NoError(err)
	req.Len(other, 1)
	req.Equal("someone else", other[0].Content)
}

func Test_GetMessage_Not_Found(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())

	_, err := repository.GetMessage(uuid.New())

	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_UpdateMessage_Skips_Write_When_Unchanged(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	message := newMessage("alice", "bob", "hi", time.Now().UTC())
	req.NoError(repository.StoreMessage(message))

	updated, changed, err := repository.UpdateMessage(message.ID, func(m *domain.Message) (bool, error) {
		return m.MarkRead(time.Now().UTC()), nil
	})
	req.NoError(err)
	req.True(changed)
	req.True(updated.Read)

	_, changed, err = repository.UpdateMessage(message.ID, func(m *domain.Message) (bool, error) {
		return m.MarkRead(time.Now().UTC()), nil
	})
	req.NoError(err)
	req.False(changed)
}

func Test_UpdateMessage_Propagates_Mutation_Error(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	message := newMessage("alice", "bob", "hi", time.Now().UTC())
	req.NoError(repository.StoreMessage(message))

	_, _, err := repository.UpdateMessage(message.ID, func(m *domain.Message) (bool, error) {
		m.Content = "hijacked"
		return true, errors.ErrAuthorization
	})

	req.ErrorIs(err, errors.ErrAuthorization)
	stored, err := repository.GetMessage(message.ID)
	req.NoError(err)
	req.Equal("hi", stored.Content)
}

func Test_UpdateMessage_Concurrent_Mutations_Are_Not_Lost(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	message := newMessage("alice", "bob", "hi", time.Now().UTC())
	req.NoError(repository.StoreMessage(message))

	// When an edit and a read receipt race on the same record
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, err := repository.UpdateMessage(message.ID, func(m *domain.Message) (bool, error) {
			return m.Edit("edited", time.Now().UTC()), nil
		})
		req.NoError(err)
	}()
	go func() {
		defer wg.Done()
		_, _, err := repository.UpdateMessage(message.ID, func(m *domain.Message) (bool, error) {
			return m.MarkRead(time.Now().UTC()), nil
		})
		req.NoError(err)
	}()
	wg.Wait()

	// Then both survive
	stored, err := repository.GetMessage(message.ID)
	req.NoError(err)
	req.True(stored.IsEdited)
	req.True(stored.Read)
	req.Equal("edited", stored.Content)
}

func Test_ClearConversation(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	at := time.Now().UTC()
	kept := newMessage("alice", "carol", "stay", at)
	cleared := newMessage("alice", "bob", "go away", at)
	req.NoError(repository.StoreMessage(kept))
	req.NoError(repository.StoreMessage(cleared))

	ids, err := repository.ClearConversation("bob", "alice")

	req.NoError(err)
	req.Equal([]uuid.UUID{cleared.ID}, ids)
	_, err = repository.GetMessage(cleared.ID)
	req.ErrorIs(err, errors.ErrNotFound)
	history, err := repository.GetConversation("alice", "carol")
	req.NoError(err)
	req.Len(history, 1)
}
