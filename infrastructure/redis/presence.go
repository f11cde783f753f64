// Package redis mirrors presence into redis so other processes can read
// who is online without talking to the coordinator.
package redis

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineKey = "presence:online"

// Commander is the subset of the redis client the mirror uses.
type Commander interface {
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

type PresenceMirror struct {
	log    *slog.Logger
	client Commander
}

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func NewPresenceMirror(log *slog.Logger, client Commander) *PresenceMirror {
	return &PresenceMirror{log: log, client: client}
}

func (m *PresenceMirror) Name() string { return "redis-presence" }

// Consume only reacts to status changes.
func (m *PresenceMirror) Consume(ctx context.Context, e event.Event) error {
	if e.Type != event.UserStatusChanged {
		return nil
	}
	status, ok := e.Payload.(event.StatusPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}

	if err := m.client.HSet(ctx, userKey(status.UserID),
		"status", string(status.Status),
		"lastSeen", status.LastSeen.UTC().Format(time.RFC3339Nano),
	).Err(); err != nil {
		return err
	}
	if status.Status == domain.StatusOnline {
		return m.client.SAdd(ctx, onlineKey, status.UserID).Err()
	}
	return m.client.SRem(ctx, onlineKey, status.UserID).Err()
}

// Online lists users the mirror currently sees online.
func (m *PresenceMirror) Online(ctx context.Context) ([]string, error) {
	return m.client.SMembers(ctx, onlineKey).Result()
}

func userKey(userID string) string {
	return "presence:user:" + userID
}
