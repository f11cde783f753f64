package services

import (
	"chat-signal/contract"
	"chat-signal/domain"
	"chat-signal/domain/event"
	"chat-signal/errors"
	"chat-signal/repositories"
	"context"
	"log/slog"
	"time"
)

type IPresenceService interface {
	RegisterOnline(ctx context.Context, userID, connID string) error
	Unregister(ctx context.Context, connID string) (userID string, wentOffline bool)
	Lookup(userID string) (contract.Connection, bool)
}

type PresenceService struct {
	log       *slog.Logger
	registry  contract.IRegistry
	users     repositories.IUserRepository
	notifier  *Notifier
	publisher contract.Publisher
	now       func() time.Time
}

func NewPresenceService(log *slog.Logger, registry contract.IRegistry, users repositories.IUserRepository,
	notifier *Notifier, publisher contract.Publisher) *PresenceService {
	return &PresenceService{
		log:       log,
		registry:  registry,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RegisterOnline makes connID the current handle of userID, superseding any
// previous one. Users unknown to storage stay reachable but nobody is told.
func (s *PresenceService) RegisterOnline(ctx context.Context, userID, connID string) error {
	if err := domain.Validate(domain.RegisterOnlineCommand{UserID: userID}); err != nil {
		return err
	}
	superseded, err := s.registry.Register(userID, connID)
	if err != nil {
		return err
	}
	if superseded != "" {
		s.log.Debug("Presence superseded", "user", userID, "old", superseded, "new", connID)
	}

	user, err := s.users.SetStatus(userID, domain.StatusOnline, s.now())
	switch {
	case errors.Is(err, errors.ErrNotFound):
		s.log.Debug("Unknown user registered online", "user", userID)
		return nil
	case err != nil:
		s.log.Error("Error while updating user status", "user", userID, "error", err)
		return err
	}
	s.announce(ctx, user)
	return nil
}

// Unregister is called when a connection closes. Only the current handle of a
// user flips them offline.
func (s *PresenceService) Unregister(ctx context.Context, connID string) (string, bool) {
	userID, wasCurrent := s.registry.Detach(connID)
	if !wasCurrent {
		return userID, false
	}
	user, err := s.users.SetStatus(userID, domain.StatusOffline, s.now())
	if err != nil {
		s.log.Debug("Offline status not stored", "user", userID, "error", err)
		return userID, true
	}
	s.announce(ctx, user)
	return userID, true
}

func (s *PresenceService) Lookup(userID string) (contract.Connection, bool) {
	return s.registry.Lookup(userID)
}

func (s *PresenceService) announce(ctx context.Context, user domain.User) {
	payload := event.StatusPayload{UserID: user.ID, Status: user.Status, LastSeen: user.LastSeen}
	s.notifier.Broadcast(ctx, "", event.New(event.UserStatusChanged, payload))
	s.publisher.Publish(event.New(event.UserStatusChanged, payload))
}
