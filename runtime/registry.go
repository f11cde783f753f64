package runtime

import (
	"chat-signal/contract"
	"chat-signal/errors"
	"fmt"
	"sync"
)

// Registry tracks live connections and which one currently speaks for a user.
// A user has at most one current connection; the last registration wins.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]contract.Connection // connection id -> handle
	presence    map[string]string              // user id -> current connection id
	owners      map[string]string              // connection id -> user id
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]contract.Connection),
		presence:    make(map[string]string),
		owners:      make(map[string]string),
	}
}

// Attach makes a freshly opened connection addressable by its id,
// before any user registers on it.
func (r *Registry) Attach(conn contract.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[conn.ID()] = conn
}

// Register binds userID to connID and returns the connection it superseded, if any.
// A connection registering as a different user releases its previous identity.
func (r *Registry) Register(userID, connID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[connID]; !ok {
		return "", fmt.Errorf("%w: connection %s", errors.ErrNotFound, connID)
	}
	if previousUser, ok := r.owners[connID]; ok && previousUser != userID {
		if r.presence[previousUser] == connID {
			delete(r.presence, previousUser)
		}
	}

	superseded := r.presence[userID]
	if superseded == connID {
		superseded = ""
	}
	r.presence[userID] = connID
	r.owners[connID] = userID
	return superseded, nil
}

// Detach forgets a closed connection. wasCurrent is true only when the
// connection was still the current one for its user, so a stale socket
// closing after a reconnect never evicts the fresh one.
func (r *Registry) Detach(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.connections, connID)
	userID, ok := r.owners[connID]
	if !ok {
		return "", false
	}
	delete(r.owners, connID)
	if r.presence[userID] != connID {
		return userID, false
	}
	delete(r.presence, userID)
	return userID, true
}

func (r *Registry) Lookup(userID string) (contract.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.presence[userID]
	if !ok {
		return nil, false
	}
	conn, ok := r.connections[connID]
	return conn, ok
}

func (r *Registry) Connection(connID string) (contract.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connections[connID]
	return conn, ok
}

func (r *Registry) UserOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.owners[connID]
	return userID, ok
}

// All returns a snapshot; callers deliver outside the lock.
func (r *Registry) All() []contract.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]contract.Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		res = append(res, conn)
	}
	return res
}

// Counts returns the number of open connections and of online users.
func (r *Registry) Counts() (connections, online int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections), len(r.presence)
}
