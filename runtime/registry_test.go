package runtime

import (
	"chat-signal/errors"
	"chat-signal/internal/fake"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_Last_Registration_Wins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, second := fake.NewConnection(), fake.NewConnection()
	registry.Attach(first)
	registry.Attach(second)

	// Given alice is online on a first connection
	superseded, err := registry.Register("alice", first.ID())
	req.NoError(err)
	req.Empty(superseded)

	// When she registers again from a second connection
	superseded, err = registry.Register("alice", second.ID())
	req.NoError(err)

	// Then only the second connection speaks for her
	req.Equal(first.ID(), superseded)
	conn, ok := registry.Lookup("alice")
	req.True(ok)
	req.Equal(second.ID(), conn.ID())
	_, online := registry.Counts()
	req.Equal(1, online)
}

func TestRegistry_Detach_Stale_Connection_Keeps_User_Online(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	stale, fresh := fake.NewConnection(), fake.NewConnection()
	registry.Attach(stale)
	registry.Attach(fresh)
	_, _ = registry.Register("alice", stale.ID())
	_, _ = registry.Register("alice", fresh.ID())

	// When the superseded socket closes late
	userID, wasCurrent := registry.Detach(stale.ID())

	// Then alice is still reachable on the fresh one
	req.Equal("alice", userID)
	req.False(wasCurrent)
	conn, ok := registry.Lookup("alice")
	req.True(ok)
	req.Equal(fresh.ID(), conn.ID())

	// When the fresh socket closes
	userID, wasCurrent = registry.Detach(fresh.ID())

	// Then alice is gone
	req.Equal("alice", userID)
	req.True(wasCurrent)
	_, ok = registry.Lookup("alice")
	req.False(ok)
}

func TestRegistry_Detach_Anonymous_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := fake.NewConnection()
	registry.Attach(conn)

	userID, wasCurrent := registry.Detach(conn.ID())

	req.Empty(userID)
	req.False(wasCurrent)
	_, ok := registry.Connection(conn.ID())
	req.False(ok)
}

func TestRegistry_Register_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	_, err := registry.Register("alice", "nope")

	req.ErrorIs(err, errors.ErrNotFound)
}

func TestRegistry_Register_Connection_Switching_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := fake.NewConnection()
	registry.Attach(conn)
	_, _ = registry.Register("alice", conn.ID())

	// When the same socket now registers as bob
	_, err := registry.Register("bob", conn.ID())
	req.NoError(err)

	// Then alice no longer resolves to it
	_, ok := registry.Lookup("alice")
	req.False(ok)
	owner, ok := registry.UserOf(conn.ID())
	req.True(ok)
	req.Equal("bob", owner)
}

func TestRegistry_Concurrent_Access(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := fake.NewConnection()
			registry.Attach(conn)
			_, _ = registry.Register("alice", conn.ID())
			registry.Lookup("alice")
			registry.All()
			registry.Detach(conn.ID())
		}()
	}
	wg.Wait()

	connections, online := registry.Counts()
	req.Zero(connections)
	req.Zero(online)
}
