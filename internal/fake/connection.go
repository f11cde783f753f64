// Package fake provides in-memory stand-ins used by package tests.
package fake

import (
	"chat-signal/domain/event"
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Connection records every event pushed to it.
type Connection struct {
	mu     sync.Mutex
	id     string
	events []event.Event
}

func NewConnection() *Connection {
	return &Connection{id: uuid.NewString()}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) Consume(_ context.Context, e event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *Connection) Events() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Event(nil), c.events...)
}

// Of returns the events of the given type, in arrival order.
func (c *Connection) Of(t event.Type) []event.Event {
	return lo.Filter(c.Events(), func(e event.Event, _ int) bool { return e.Type == t })
}

func (c *Connection) Types() []event.Type {
	return lo.Map(c.Events(), func(e event.Event, _ int) event.Type { return e.Type })
}

func (c *Connection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
