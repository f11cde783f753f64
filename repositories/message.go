//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-signal/domain"
	"chat-signal/errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	messagePrefix      = "msg:"
	conversationPrefix = "conv:"
)

// Mutation edits a message in place and reports whether anything changed.
// Returning false skips the write.
type Mutation func(message *domain.Message) (bool, error)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetMessage(id uuid.UUID) (domain.Message, error)
	UpdateMessage(id uuid.UUID, mutate Mutation) (domain.Message, bool, error)
	GetConversation(userA, userB string) ([]domain.Message, error)
	ClearConversation(userA, userB string) ([]uuid.UUID, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

func messageKey(id uuid.UUID) []byte {
	return []byte(messagePrefix + id.String())
}

// conversationKey is shared by both participants: the pair is sorted first.
// Both ids are length-prefixed so that no pair's key is a prefix of another's.
func conversationKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return fmt.Sprintf("%s%d:%s:%d:%s:", conversationPrefix, len(pair[0]), pair[0], len(pair[1]), pair[1])
}

// indexKey is formatted as "conv:{pair}:{timestamp_padded}:{uuid}" so a prefix
// scan yields the conversation in chronological order; the uuid separates
// messages stored within the same nanosecond.
func indexKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s",
		conversationKey(message.SenderID, message.ReceiverID),
		message.Timestamp.UnixNano(),
		message.ID,
	))
}

// StoreMessage writes the record and its conversation index entry atomically.
func (m MessageRepository) StoreMessage(message domain.Message) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		if err := writeJSON(txn, messageKey(message.ID), message); err != nil {
			return err
		}
		return txn.Set(indexKey(message), []byte(message.ID.String()))
	})
	return wrapStorage(err, "message "+message.ID.String())
}

func (m MessageRepository) GetMessage(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, messageKey(id), &message)
	})
	if err != nil {
		return domain.Message{}, wrapStorage(err, "message "+id.String())
	}
	return message, nil
}

// UpdateMessage runs read-modify-write in a single transaction, retried on
// conflict so concurrent edits and read receipts never overwrite each other.
func (m MessageRepository) UpdateMessage(id uuid.UUID, mutate Mutation) (domain.Message, bool, error) {
	var (
		message domain.Message
		changed bool
	)
	err := updateWithRetry(m.db, func(txn *badger.Txn) error {
		message = domain.Message{}
		if err := readJSON(txn, messageKey(id), &message); err != nil {
			return err
		}
		var err error
		changed, err = mutate(&message)
		if err != nil || !changed {
			return err
		}
		return writeJSON(txn, messageKey(id), message)
	})
	if err != nil {
		return domain.Message{}, false, wrapStorage(err, "message "+id.String())
	}
	return message, changed, nil
}

// GetConversation returns every stored message of the pair, soft-deleted ones
// included, in ascending timestamp order.
func (m MessageRepository) GetConversation(userA, userB string) ([]domain.Message, error) {
	res := []domain.Message{}
	err := m.db.View(func(txn *badger.Txn) error {
		var ids []uuid.UUID
		err := scanPrefix(txn, []byte(conversationKey(userA, userB)), func(_ []byte, value []byte) error {
			id, err := uuid.ParseBytes(value)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return err
		}
		for _, id := range ids {
			var message domain.Message
			if err := readJSON(txn, messageKey(id), &message); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					m.log.Debug("Dangling conversation index entry", "id", id)
					continue
				}
				return err
			}
			res = append(res, message)
		}
		return nil
	})
	return res, wrapStorage(err, "conversation")
}

// ClearConversation hard-deletes the pair's messages and their index entries.
func (m MessageRepository) ClearConversation(userA, userB string) ([]uuid.UUID, error) {
	var (
		ids  []uuid.UUID
		keys [][]byte
	)
	err := m.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(conversationKey(userA, userB)), func(key []byte, value []byte) error {
			id, err := uuid.ParseBytes(value)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			keys = append(keys, key, messageKey(id))
			return nil
		})
	})
	if err != nil {
		return nil, wrapStorage(err, "conversation")
	}

	// A conversation can outgrow a single transaction, a write batch splits it.
	batch := m.db.NewWriteBatch()
	defer batch.Cancel()
	for _, key := range keys {
		if err = batch.Delete(key); err != nil {
			return nil, wrapStorage(err, "conversation")
		}
	}
	if err = batch.Flush(); err != nil {
		return nil, wrapStorage(err, "conversation")
	}
	return ids, nil
}
