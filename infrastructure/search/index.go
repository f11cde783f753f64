// Package search keeps a bluge full-text index of message content, one
// keyword per conversation, fed by the fanout worker.
package search

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"chat-signal/errors"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	fieldConversation = "conversation"
	fieldContent      = "content"
	fieldSender       = "sender"
	fieldTimestamp    = "timestamp"
	defaultLimit      = 50
)

type Index struct {
	log    *slog.Logger
	writer *bluge.Writer
}

func NewIndex(log *slog.Logger, writer *bluge.Writer) *Index {
	return &Index{log: log, writer: writer}
}

func (i *Index) Name() string { return "search-index" }

// Consume keeps the index in step with stored, edited, deleted and cleared messages.
func (i *Index) Consume(_ context.Context, e event.Event) error {
	switch e.Type {
	case event.MessageStored, event.MessageChanged:
		message, ok := e.Payload.(domain.Message)
		if !ok {
			return fmt.Errorf("%w: unexpected payload %T", errors.ErrValidation, e.Payload)
		}
		if message.IsDeleted || message.Content == "" {
			return i.writer.Delete(bluge.Identifier(message.ID.String()))
		}
		return i.writer.Update(bluge.Identifier(message.ID.String()), document(message))

	case event.MessagesCleared:
		cleared, ok := e.Payload.(event.ClearedPayload)
		if !ok {
			return fmt.Errorf("%w: unexpected payload %T", errors.ErrValidation, e.Payload)
		}
		batch := bluge.NewBatch()
		for _, id := range cleared.IDs {
			batch.Delete(bluge.Identifier(id.String()))
		}
		return i.writer.Batch(batch)

	default:
		return nil
	}
}

// Search returns ids of messages of the conversation matching query, best match first.
func (i *Index) Search(ctx context.Context, userA, userB, query string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	defer reader.Close()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(conversationKey(userA, userB)).SetField(fieldConversation)).
		AddMust(bluge.NewMatchQuery(query).SetField(fieldContent))

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}

	var ids []uuid.UUID
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.ParseBytes(value); parseErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err == nil {
			match, err = matches.Next()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return ids, nil
}

func document(m domain.Message) *bluge.Document {
	return bluge.NewDocument(m.ID.String()).
		AddField(bluge.NewKeywordField(fieldConversation, conversationKey(m.SenderID, m.ReceiverID))).
		AddField(bluge.NewKeywordField(fieldSender, m.SenderID).StoreValue()).
		AddField(bluge.NewTextField(fieldContent, m.Content)).
		AddField(bluge.NewDateTimeField(fieldTimestamp, m.Timestamp))
}

// conversationKey is order independent and length-prefixed so ids containing
// the separator cannot collide.
func conversationKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return fmt.Sprintf("%d:%s:%s", len(pair[0]), pair[0], pair[1])
}
