//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-signal/domain"
	"chat-signal/errors"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const userPrefix = "user:"

type IUserRepository interface {
	GetUser(id string) (domain.User, error)
	SaveUser(user domain.User) error
	SetStatus(id string, status domain.Status, at time.Time) (domain.User, error)
	ListUsers() ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func userKey(id string) []byte {
	return []byte(userPrefix + id)
}

// GetUser returns ErrNotFound when the id was never saved.
func (u UserRepository) GetUser(id string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, userKey(id), &user)
	})
	if err != nil {
		return domain.User{}, wrapStorage(err, "user "+id)
	}
	return user, nil
}

func (u UserRepository) SaveUser(user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: marshal user: %v", errors.ErrStorage, err)
	}
	err = u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
	return wrapStorage(err, "user "+user.ID)
}

// SetStatus flips online/offline and stamps lastSeen in one transaction.
func (u UserRepository) SetStatus(id string, status domain.Status, at time.Time) (domain.User, error) {
	var user domain.User
	err := updateWithRetry(u.db, func(txn *badger.Txn) error {
		if err := readJSON(txn, userKey(id), &user); err != nil {
			return err
		}
		user.Status = status
		user.LastSeen = at
		return writeJSON(txn, userKey(id), user)
	})
	if err != nil {
		return domain.User{}, wrapStorage(err, "user "+id)
	}
	return user, nil
}

func (u UserRepository) ListUsers() ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(userPrefix), func(_ []byte, value []byte) error {
			var user domain.User
			if err := json.Unmarshal(value, &user); err != nil {
				return err
			}
			users = append(users, user)
			return nil
		})
	})
	return users, wrapStorage(err, "users")
}
