package repositories

import (
	"chat-signal/errors"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const maxConflictRetries = 5

// updateWithRetry reruns fn in a fresh transaction when badger detects a
// concurrent write on a key fn read.
func updateWithRetry(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func readJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func writeJSON(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// scanPrefix walks keys in ascending order. Values are only valid inside fn.
func scanPrefix(txn *badger.Txn, prefix []byte, fn func(key, value []byte) error) error {
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	it := txn.NewIterator(options)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		err := item.Value(func(val []byte) error {
			return fn(key, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// scanKeys walks keys only, skipping value reads.
func scanKeys(txn *badger.Txn, prefix []byte, fn func(key []byte)) {
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		fn(it.Item().KeyCopy(nil))
	}
}

// wrapStorage maps a missing key to ErrNotFound and anything else to ErrStorage.
// Errors already carrying a sentinel pass through.
func wrapStorage(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: %s", errors.ErrNotFound, what)
	case errors.Is(err, errors.ErrNotFound), errors.Is(err, errors.ErrStorage),
		errors.Is(err, errors.ErrAuthorization), errors.Is(err, errors.ErrValidation):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", errors.ErrStorage, what, err)
	}
}

// ownedKey prefixes the owner with its length so that ids containing the
// separator never collide across owners.
func ownedKey(prefix, owner, other string) []byte {
	return []byte(fmt.Sprintf("%s%d:%s:%s", prefix, len(owner), owner, other))
}

func ownedPrefix(prefix, owner string) []byte {
	return []byte(fmt.Sprintf("%s%d:%s:", prefix, len(owner), owner))
}
