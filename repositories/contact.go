//go:generate go run go.uber.org/mock/mockgen -source=contact.go -destination=../mocks/mock_contact_repository.go -package=mocks
package repositories

import (
	"chat-signal/domain"
	"chat-signal/errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	contactPrefix = "contact:"
	blockPrefix   = "block:"
)

// IContactRepository stores the contact graph (undirected, written as two
// directed keys) and the block list (directed).
type IContactRepository interface {
	EnsureContact(edge domain.ContactEdge) (created bool, err error)
	RemoveContact(edge domain.ContactEdge) error
	ListContacts(userID string) ([]string, error)
	IsContact(a, b string) (bool, error)
	Block(edge domain.BlockEdge) error
	Unblock(edge domain.BlockEdge) error
	IsBlocked(edge domain.BlockEdge) (bool, error)
	ListBlocked(blocker string) ([]string, error)
}

type ContactRepository struct {
	db *badger.DB
}

func NewContactRepository(db *badger.DB) IContactRepository {
	return &ContactRepository{db: db}
}

// EnsureContact is idempotent; created is false when both directions already existed.
func (c ContactRepository) EnsureContact(edge domain.ContactEdge) (bool, error) {
	if !edge.Valid() {
		return false, fmt.Errorf("%w: contact edge %q -> %q", errors.ErrValidation, edge.A, edge.B)
	}
	created := false
	err := updateWithRetry(c.db, func(txn *badger.Txn) error {
		created = false
		for _, key := range [][]byte{
			ownedKey(contactPrefix, edge.A, edge.B),
			ownedKey(contactPrefix, edge.B, edge.A),
		} {
			_, err := txn.Get(key)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err = txn.Set(key, nil); err != nil {
				return err
			}
			created = true
		}
		return nil
	})
	return created, wrapStorage(err, "contact")
}

// RemoveContact deletes both directions.
func (c ContactRepository) RemoveContact(edge domain.ContactEdge) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(ownedKey(contactPrefix, edge.A, edge.B)); err != nil {
			return err
		}
		return txn.Delete(ownedKey(contactPrefix, edge.B, edge.A))
	})
	return wrapStorage(err, "contact")
}

func (c ContactRepository) ListContacts(userID string) ([]string, error) {
	return c.listOwned(contactPrefix, userID)
}

// IsContact holds when either side lists the other.
func (c ContactRepository) IsContact(a, b string) (bool, error) {
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		for _, key := range [][]byte{ownedKey(contactPrefix, a, b), ownedKey(contactPrefix, b, a)} {
			ok, err := exists(txn, key)
			if err != nil {
				return err
			}
			found = found || ok
		}
		return nil
	})
	return found, wrapStorage(err, "contact")
}

func (c ContactRepository) Block(edge domain.BlockEdge) error {
	if edge.Blocker == "" || edge.Blocked == "" || edge.Blocker == edge.Blocked {
		return fmt.Errorf("%w: block edge %q -> %q", errors.ErrValidation, edge.Blocker, edge.Blocked)
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ownedKey(blockPrefix, edge.Blocker, edge.Blocked), nil)
	})
	return wrapStorage(err, "block")
}

func (c ContactRepository) Unblock(edge domain.BlockEdge) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(ownedKey(blockPrefix, edge.Blocker, edge.Blocked))
	})
	return wrapStorage(err, "block")
}

func (c ContactRepository) IsBlocked(edge domain.BlockEdge) (bool, error) {
	var blocked bool
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		blocked, err = exists(txn, ownedKey(blockPrefix, edge.Blocker, edge.Blocked))
		return err
	})
	return blocked, wrapStorage(err, "block")
}

func (c ContactRepository) ListBlocked(blocker string) ([]string, error) {
	return c.listOwned(blockPrefix, blocker)
}

func (c ContactRepository) listOwned(prefix, owner string) ([]string, error) {
	ownerPrefix := ownedPrefix(prefix, owner)
	res := []string{}
	err := c.db.View(func(txn *badger.Txn) error {
		scanKeys(txn, ownerPrefix, func(key []byte) {
			res = append(res, string(key[len(ownerPrefix):]))
		})
		return nil
	})
	return res, wrapStorage(err, prefix+owner)
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}
