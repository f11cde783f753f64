package services_test

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"chat-signal/internal/fake"
	"chat-signal/services"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresenceService_Double_Registration_Keeps_One_Entry(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, services.MessageSettings{})
	first := h.online("alice")
	second := fake.NewConnection()
	h.registry.Attach(second)

	// When alice registers again from another socket
	req.NoError(h.presence.RegisterOnline(h.ctx, "alice", second.ID()))

	// Then lookups resolve to the newest connection only
	conn, ok := h.presence.Lookup("alice")
	req.True(ok)
	req.Equal(second.ID(), conn.ID())
	_, online := h.registry.Counts()
	req.Equal(1, online)

	// And the stale socket closing leaves her online
	first.Reset()
	second.Reset()
	userID, wentOffline := h.presence.Unregister(h.ctx, first.ID())
	req.Equal("alice", userID)
	req.False(wentOffline)
	req.Empty(second.Events())
	user, err := h.users.GetUser("alice")
	req.NoError(err)
	req.Equal(domain.StatusOnline, user.Status)
}

func TestPresenceService_Status_Broadcast(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, services.MessageSettings{})
	bob := h.online("bob")
	bob.Reset()

	// When alice comes online
	alice := h.online("alice")

	// Then everyone, alice included, sees it
	changed := bob.Of(event.UserStatusChanged)
	req.Len(changed, 1)
	req.Equal("alice", changed[0].Payload.(event.StatusPayload).UserID)
	req.Equal(domain.StatusOnline, changed[0].Payload.(event.StatusPayload).Status)
	req.Len(alice.Of(event.UserStatusChanged), 1)

	// When she leaves
	bob.Reset()
	_, wentOffline := h.presence.Unregister(h.ctx, alice.ID())

	// Then she is offline with a fresh lastSeen
	req.True(wentOffline)
	changed = bob.Of(event.UserStatusChanged)
	req.Len(changed, 1)
	req.Equal(domain.StatusOffline, changed[0].Payload.(event.StatusPayload).Status)
	user, err := h.users.GetUser("alice")
	req.NoError(err)
	req.Equal(domain.StatusOffline, user.Status)
	req.False(user.LastSeen.IsZero())
	req.Len(h.publisher.Of(event.UserStatusChanged), 3)
}

func TestPresenceService_Unknown_User_Is_Reachable_But_Not_Announced(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, services.MessageSettings{})
	bob := h.online("bob")
	bob.Reset()
	ghost := fake.NewConnection()
	h.registry.Attach(ghost)

	req.NoError(h.presence.RegisterOnline(h.ctx, "ghost", ghost.ID()))

	_, ok := h.presence.Lookup("ghost")
	req.True(ok)
	req.Empty(bob.Events())
}

func TestPresenceService_Rejects_Empty_User(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, services.MessageSettings{})
	conn := fake.NewConnection()
	h.registry.Attach(conn)

	req.Error(h.presence.RegisterOnline(h.ctx, "", conn.ID()))
}

func TestTypingService(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, services.MessageSettings{})
	alice, bob := h.online("alice"), h.online("bob")
	resetAll(alice, bob)

	req.NoError(h.typing.SetTyping(h.ctx, domain.TypingCommand{SenderID: "alice", ReceiverID: "bob", IsTyping: true}))
	req.NoError(h.typing.SetTyping(h.ctx, domain.TypingCommand{SenderID: "alice", ReceiverID: "carol", IsTyping: true}))

	typing := bob.Of(event.UserTyping)
	req.Len(typing, 1)
	req.Equal(event.TypingPayload{SenderID: "alice", IsTyping: true}, typing[0].Payload)
	req.Empty(alice.Events())
}

func TestContactService(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, services.MessageSettings{})
	alice, bob := h.online("alice"), h.online("bob")
	resetAll(alice, bob)

	// When alice adds bob, and an unknown user
	req.NoError(h.contact.AddContact(h.ctx, "alice", "bob"))
	req.NoError(h.contact.AddContact(h.ctx, "alice", "zed"))
	req.Len(bob.Of(event.ContactsUpdated), 1)

	contacts, err := h.contact.ListContacts("alice")
	req.NoError(err)
	req.Len(contacts, 2)
	req.ElementsMatch([]string{"bob", "zed"}, []string{contacts[0].ID, contacts[1].ID})

	// When alice blocks bob
	req.NoError(h.contact.Block(h.ctx, "alice", "bob"))

	// Then the edge is gone on both sides
	contacts, err = h.contact.ListContacts("alice")
	req.NoError(err)
	req.Len(contacts, 1)
	bobContacts, err := h.contact.ListContacts("bob")
	req.NoError(err)
	req.Empty(bobContacts)
	blocked, err := h.contact.ListBlocked("alice")
	req.NoError(err)
	req.Equal([]string{"bob"}, blocked)

	req.NoError(h.contact.Unblock(h.ctx, "alice", "bob"))
	blocked, err = h.contact.ListBlocked("alice")
	req.NoError(err)
	req.Empty(blocked)

	req.NoError(h.contact.RemoveContact(h.ctx, "bob", "alice"))
	bobContacts, err = h.contact.ListContacts("bob")
	req.NoError(err)
	req.Empty(bobContacts)
}
