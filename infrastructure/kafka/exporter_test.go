package kafka

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestExporter_Keys_By_Conversation(t *testing.T) {
	req := require.New(t)
	writer := &recordingWriter{}
	exporter := NewExporter(logs.GetLoggerFromLevel(slog.LevelDebug), writer)
	ctx := context.Background()

	sent := domain.Message{ID: uuid.New(), SenderID: "bob", ReceiverID: "alice", Content: "hi"}
	reply := domain.Message{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Content: "hey"}

	req.NoError(exporter.Consume(ctx, event.New(event.MessageStored, sent)))
	req.NoError(exporter.Consume(ctx, event.New(event.MessageStored, reply)))

	// Then both directions share a partition key
	req.Len(writer.messages, 2)
	req.Equal(writer.messages[0].Key, writer.messages[1].Key)

	var record struct {
		Type    event.Type     `json:"type"`
		Payload domain.Message `json:"payload"`
	}
	req.NoError(json.Unmarshal(writer.messages[0].Value, &record))
	req.Equal(event.MessageStored, record.Type)
	req.Equal(sent.ID, record.Payload.ID)
}

func TestExporter_Skips_Client_Only_Events(t *testing.T) {
	req := require.New(t)
	writer := &recordingWriter{}
	exporter := NewExporter(logs.GetLoggerFromLevel(slog.LevelDebug), writer)

	req.NoError(exporter.Consume(context.Background(), event.New(event.UserTyping, event.TypingPayload{SenderID: "alice"})))
	req.NoError(exporter.Consume(context.Background(), event.New(event.UserStatusChanged, event.StatusPayload{UserID: "alice"})))

	req.Len(writer.messages, 1)
	req.Equal("alice", string(writer.messages[0].Key))
}
