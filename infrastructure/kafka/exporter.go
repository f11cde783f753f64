// Package kafka exports domain events to a topic for downstream consumers
// (analytics, archival). The coordinator never reads them back.
package kafka

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Record is the exported value. Key keeps one conversation, or one user, on one partition.
type Record struct {
	Type    event.Type `json:"type"`
	At      string     `json:"at"`
	Payload any        `json:"payload"`
}

var exported = map[event.Type]struct{}{
	event.MessageStored:     {},
	event.MessageChanged:    {},
	event.MessagesCleared:   {},
	event.UserStatusChanged: {},
}

type Exporter struct {
	log    *slog.Logger
	writer MessageWriter
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewExporter(log *slog.Logger, writer MessageWriter) *Exporter {
	return &Exporter{log: log, writer: writer}
}

func (x *Exporter) Name() string { return "kafka-exporter" }

func (x *Exporter) Consume(ctx context.Context, e event.Event) error {
	if _, ok := exported[e.Type]; !ok {
		return nil
	}
	value, err := json.Marshal(Record{Type: e.Type, At: e.CreatedAt.Format(time.RFC3339Nano), Payload: e.Payload})
	if err != nil {
		return err
	}
	return x.writer.WriteMessages(ctx, kafka.Message{Key: []byte(partitionKey(e)), Value: value})
}

func (x *Exporter) Close() error {
	return x.writer.Close()
}

func partitionKey(e event.Event) string {
	switch p := e.Payload.(type) {
	case domain.Message:
		return pairKey(p.SenderID, p.ReceiverID)
	case event.ClearedPayload:
		return pairKey(p.UserA, p.UserB)
	case event.StatusPayload:
		return p.UserID
	default:
		return string(e.Type)
	}
}

func pairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return fmt.Sprintf("%d:%s:%s", len(pair[0]), pair[0], pair[1])
}
