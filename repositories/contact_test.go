package repositories

import (
	"chat-signal/domain"
	"chat-signal/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_EnsureContact_Is_Symmetric_And_Idempotent(t *testing.T) {
	req := require.New(t)
	repository := NewContactRepository(openDB(t))

	created, err := repository.EnsureContact(domain.ContactEdge{A: "alice", B: "bob"})
	req.NoError(err)
	req.True(created)

	created, err = repository.EnsureContact(domain.ContactEdge{A: "bob", B: "alice"})
	req.NoError(err)
	req.False(created)

	aliceContacts, err := repository.ListContacts("alice")
	req.NoError(err)
	bobContacts, err := repository.ListContacts("bob")
	req.NoError(err)
	req.Equal([]string{"bob"}, aliceContacts)
	req.Equal([]string{"alice"}, bobContacts)
}

func Test_EnsureContact_Refuses_Self_Edge(t *testing.T) {
	req := require.New(t)
	repository := NewContactRepository(openDB(t))

	_, err := repository.EnsureContact(domain.ContactEdge{A: "alice", B: "alice"})

	req.ErrorIs(err, errors.ErrValidation)
}

func Test_RemoveContact_Clears_Both_Sides(t *testing.T) {
	req := require.New(t)
	repository := NewContactRepository(openDB(t))
	_, err := repository.EnsureContact(domain.ContactEdge{A: "alice", B: "bob"})
	req.NoError(err)
	_, err = repository.EnsureContact(domain.ContactEdge{A: "alice", B: "carol"})
	req.NoError(err)

	// When carol is removed from either side
	req.NoError(repository.RemoveContact(domain.ContactEdge{A: "carol", B: "alice"}))

	// Then neither lists the other
	isContact, err := repository.IsContact("alice", "carol")
	req.NoError(err)
	req.False(isContact)
	carolContacts, err := repository.ListContacts("carol")
	req.NoError(err)
	req.Empty(carolContacts)

	// And the unrelated edge survives
	aliceContacts, err := repository.ListContacts("alice")
	req.NoError(err)
	req.Equal([]string{"bob"}, aliceContacts)
	isContact, err = repository.IsContact("bob", "alice")
	req.NoError(err)
	req.True(isContact)
}

func Test_Block_Is_Directed(t *testing.T) {
	req := require.New(t)
	repository := NewContactRepository(openDB(t))

	req.NoError(repository.Block(domain.BlockEdge{Blocker: "bob", Blocked: "alice"}))

	blocked, err := repository.IsBlocked(domain.BlockEdge{Blocker: "bob", Blocked: "alice"})
	req.NoError(err)
	req.True(blocked)
	blocked, err = repository.IsBlocked(domain.BlockEdge{Blocker: "alice", Blocked: "bob"})
	req.NoError(err)
	req.False(blocked)
	list, err := repository.ListBlocked("bob")
	req.NoError(err)
	req.Equal([]string{"alice"}, list)

	req.NoError(repository.Unblock(domain.BlockEdge{Blocker: "bob", Blocked: "alice"}))
	list, err = repository.ListBlocked("bob")
	req.NoError(err)
	req.Empty(list)
}

func Test_User_Status(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))
	at := time.Now().UTC().Truncate(time.Millisecond)

	_, err := repository.SetStatus("ghost", domain.StatusOnline, at)
	req.ErrorIs(err, errors.ErrNotFound)

	req.NoError(repository.SaveUser(domain.User{ID: "alice", DisplayName: "Alice", Status: domain.StatusOffline}))
	user, err := repository.SetStatus("alice", domain.StatusOnline, at)
	req.NoError(err)
	req.Equal(domain.StatusOnline, user.Status)
	req.True(at.Equal(user.LastSeen))

	stored, err := repository.GetUser("alice")
	req.NoError(err)
	req.Equal("Alice", stored.DisplayName)
	req.Equal(domain.StatusOnline, stored.Status)

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 1)
}
