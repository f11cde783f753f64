package services

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"chat-signal/errors"
	"chat-signal/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

type IContactService interface {
	AddContact(ctx context.Context, userID, contactID string) error
	RemoveContact(ctx context.Context, userID, contactID string) error
	ListContacts(userID string) ([]domain.User, error)
	Block(ctx context.Context, blocker, blocked string) error
	Unblock(ctx context.Context, blocker, blocked string) error
	ListBlocked(blocker string) ([]string, error)
	SearchUsers(userID, query string) ([]domain.User, error)
}

type ContactService struct {
	log      *slog.Logger
	contacts repositories.IContactRepository
	users    repositories.IUserRepository
	notifier *Notifier
}

func NewContactService(log *slog.Logger, contacts repositories.IContactRepository,
	users repositories.IUserRepository, notifier *Notifier) *ContactService {
	return &ContactService{log: log, contacts: contacts, users: users, notifier: notifier}
}

func (s *ContactService) AddContact(ctx context.Context, userID, contactID string) error {
	created, err := s.contacts.EnsureContact(domain.ContactEdge{A: userID, B: contactID})
	if err != nil {
		return err
	}
	if created {
		s.touched(ctx, userID, contactID)
	}
	return nil
}

func (s *ContactService) RemoveContact(ctx context.Context, userID, contactID string) error {
	if err := requireIDs(userID, contactID); err != nil {
		return err
	}
	if err := s.contacts.RemoveContact(domain.ContactEdge{A: userID, B: contactID}); err != nil {
		return err
	}
	s.touched(ctx, userID, contactID)
	return nil
}

// ListContacts resolves contact ids to users. Ids without a stored profile
// are still listed, with only their id.
func (s *ContactService) ListContacts(userID string) ([]domain.User, error) {
	if err := requireIDs(userID); err != nil {
		return nil, err
	}
	ids, err := s.contacts.ListContacts(userID)
	if err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetUser(id)
		switch {
		case errors.Is(err, errors.ErrNotFound):
			user = domain.User{ID: id, Status: domain.StatusOffline}
		case err != nil:
			return nil, err
		}
		res = append(res, user)
	}
	return res, nil
}

// Block stops blocked from messaging blocker. An existing contact edge is
// removed on both sides, and both users are told their list changed.
func (s *ContactService) Block(ctx context.Context, blocker, blocked string) error {
	edge := domain.ContactEdge{A: blocker, B: blocked}
	if err := s.contacts.Block(domain.BlockEdge{Blocker: blocker, Blocked: blocked}); err != nil {
		return err
	}
	wasContact, err := s.contacts.IsContact(blocker, blocked)
	if err != nil || !wasContact {
		return err
	}
	if err := s.contacts.RemoveContact(edge); err != nil {
		return err
	}
	s.touched(ctx, blocker, blocked)
	return nil
}

func (s *ContactService) Unblock(_ context.Context, blocker, blocked string) error {
	if err := requireIDs(blocker, blocked); err != nil {
		return err
	}
	return s.contacts.Unblock(domain.BlockEdge{Blocker: blocker, Blocked: blocked})
}

func (s *ContactService) ListBlocked(blocker string) ([]string, error) {
	if err := requireIDs(blocker); err != nil {
		return nil, err
	}
	return s.contacts.ListBlocked(blocker)
}

func (s *ContactService) touched(ctx context.Context, userIDs ...string) {
	for _, userID := range userIDs {
		s.notifier.ToUser(ctx, userID, event.New(event.ContactsUpdated, event.ContactsUpdatedPayload{UserID: userID}))
	}
}

func requireIDs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: user id is required", errors.ErrValidation)
		}
	}
	return nil
}

// SearchUsers matches query against ids and display names, ignoring case.
// The caller is never part of the result and an empty query finds nobody.
func (s *ContactService) SearchUsers(userID, query string) ([]domain.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []domain.User{}, nil
	}
	users, err := s.users.ListUsers()
	if err != nil {
		return nil, err
	}
	return lo.Filter(users, func(u domain.User, _ int) bool {
		return u.ID != userID &&
			(strings.Contains(strings.ToLower(u.ID), query) || strings.Contains(strings.ToLower(u.DisplayName), query))
	}), nil
}
