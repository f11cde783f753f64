package services

import (
	"chat-signal/contract"
	"chat-signal/domain/event"
	"context"
	"log/slog"
)

// Notifier pushes events to live connections resolved through the registry.
// Every delivery is best-effort: absent recipients are skipped silently.
type Notifier struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewNotifier(log *slog.Logger, registry contract.IRegistry) *Notifier {
	return &Notifier{log: log, registry: registry}
}

// ToUser delivers to the user's current connection and reports whether one existed.
func (n *Notifier) ToUser(ctx context.Context, userID string, e event.Event) bool {
	conn, ok := n.registry.Lookup(userID)
	if !ok {
		return false
	}
	n.deliver(ctx, conn, e)
	return true
}

// ToConnection delivers to one connection by id.
func (n *Notifier) ToConnection(ctx context.Context, connID string, e event.Event) bool {
	conn, ok := n.registry.Connection(connID)
	if !ok {
		n.log.Debug("Connection gone, event dropped", "conn", connID, "event", e.Type)
		return false
	}
	n.deliver(ctx, conn, e)
	return true
}

// ToUsers delivers to each user's connection, skipping the excluded connection.
func (n *Notifier) ToUsers(ctx context.Context, userIDs []string, exceptConn string, e event.Event) {
	seen := make(map[string]struct{}, len(userIDs))
	for _, userID := range userIDs {
		conn, ok := n.registry.Lookup(userID)
		if !ok || conn.ID() == exceptConn {
			continue
		}
		if _, dup := seen[conn.ID()]; dup {
			continue
		}
		seen[conn.ID()] = struct{}{}
		n.deliver(ctx, conn, e)
	}
}

// Broadcast delivers to every open connection but exceptConn.
func (n *Notifier) Broadcast(ctx context.Context, exceptConn string, e event.Event) {
	for _, conn := range n.registry.All() {
		if conn.ID() == exceptConn {
			continue
		}
		n.deliver(ctx, conn, e)
	}
}

func (n *Notifier) deliver(ctx context.Context, conn contract.Connection, e event.Event) {
	if err := conn.Consume(ctx, e); err != nil {
		n.log.Debug("Event not delivered", "conn", conn.ID(), "event", e.Type, "error", err)
	}
}
