package services

import (
	"chat-signal/contract"
	"chat-signal/domain"
	"chat-signal/domain/event"
	"chat-signal/errors"
	"chat-signal/moderation"
	"chat-signal/repositories"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const blockedNotice = "You are blocked by this user"

type IMessageService interface {
	Send(ctx context.Context, connID string, cmd domain.SendMessageCommand) (domain.Message, error)
	Edit(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error)
	Delete(ctx context.Context, cmd domain.DeleteMessageCommand) (domain.Message, error)
	MarkRead(ctx context.Context, connID string, cmd domain.MarkReadCommand) (domain.Message, error)
	LoadHistory(userA, userB string) ([]domain.Message, error)
	Search(ctx context.Context, userA, userB, query string, limit int) ([]domain.Message, error)
	ClearHistory(ctx context.Context, userA, userB string) (int, error)
}

type ContentModerator interface {
	Moderate(content string) moderation.Result
}

// MessageSearcher resolves a full-text query inside one conversation to message ids.
type MessageSearcher interface {
	Search(ctx context.Context, userA, userB, query string, limit int) ([]uuid.UUID, error)
}

type MessageSettings struct {
	// BroadcastMutations sends edit/delete/read notifications to every
	// connection instead of the two participants only.
	BroadcastMutations bool
	// EnforceReadOwnership lets only the receiver mark a message read.
	EnforceReadOwnership bool
	MaxContentLength     int
}

type MessageService struct {
	log       *slog.Logger
	messages  repositories.IMessageRepository
	contacts  repositories.IContactRepository
	notifier  *Notifier
	publisher contract.Publisher
	moderator ContentModerator
	searcher  MessageSearcher
	settings  MessageSettings
	now       func() time.Time
}

func NewMessageService(log *slog.Logger, messages repositories.IMessageRepository,
	contacts repositories.IContactRepository, notifier *Notifier, publisher contract.Publisher,
	settings MessageSettings) *MessageService {
	return &MessageService{
		log:       log,
		messages:  messages,
		contacts:  contacts,
		notifier:  notifier,
		publisher: publisher,
		settings:  settings,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithModerator enables censoring of text content on send and edit.
func (s *MessageService) WithModerator(m ContentModerator) *MessageService {
	s.moderator = m
	return s
}

func (s *MessageService) WithSearcher(searcher MessageSearcher) *MessageService {
	s.searcher = searcher
	return s
}

// Send persists a message and fans it out. connID is the sender's acting
// connection; it receives the acknowledgement carrying the client tempId.
func (s *MessageService) Send(ctx context.Context, connID string, cmd domain.SendMessageCommand) (domain.Message, error) {
	if err := domain.Validate(cmd); err != nil {
		return domain.Message{}, err
	}
	if err := s.checkLength(cmd.Content); err != nil {
		return domain.Message{}, err
	}

	blocked, err := s.contacts.IsBlocked(domain.BlockEdge{Blocker: cmd.ReceiverID, Blocked: cmd.SenderID})
	if err != nil {
		return domain.Message{}, s.failed(ctx, connID, cmd, err)
	}
	if blocked {
		s.toSender(ctx, connID, cmd.SenderID, event.New(event.MessageBlocked, event.MessageBlockedPayload{
			ReceiverID: cmd.ReceiverID,
			Message:    blockedNotice,
		}))
		return domain.Message{}, fmt.Errorf("%w: %s -> %s", errors.ErrBlocked, cmd.SenderID, cmd.ReceiverID)
	}

	if _, err = s.contacts.EnsureContact(domain.ContactEdge{A: cmd.SenderID, B: cmd.ReceiverID}); err != nil {
		return domain.Message{}, s.failed(ctx, connID, cmd, err)
	}

	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Content:    s.moderate(cmd.Content),
		Type:       cmd.Type,
		File:       cmd.File,
		Timestamp:  s.now(),
		Delivered:  true,
	}
	if err = s.messages.StoreMessage(message); err != nil {
		return domain.Message{}, s.failed(ctx, connID, cmd, err)
	}

	s.toSender(ctx, connID, cmd.SenderID, event.New(event.ReceiveMessage, event.MessagePayload{Message: message, TempID: cmd.TempID}))
	if !s.notifier.ToUser(ctx, cmd.ReceiverID, event.New(event.ReceiveMessage, event.MessagePayload{Message: message})) {
		s.log.Debug("Receiver offline, message stored", "receiver", cmd.ReceiverID, "id", message.ID)
	}
	s.toSender(ctx, connID, cmd.SenderID, event.New(event.ContactsUpdated, event.ContactsUpdatedPayload{UserID: cmd.SenderID}))
	s.notifier.ToUser(ctx, cmd.ReceiverID, event.New(event.ContactsUpdated, event.ContactsUpdatedPayload{UserID: cmd.ReceiverID}))

	s.publisher.Publish(event.New(event.MessageStored, message))
	return message, nil
}

// Edit replaces the content of a message the requestor sent. Editing a
// deleted message succeeds without effect.
func (s *MessageService) Edit(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error) {
	if err := domain.Validate(cmd); err != nil {
		return domain.Message{}, err
	}
	if err := s.checkLength(cmd.Content); err != nil {
		return domain.Message{}, err
	}
	content := s.moderate(cmd.Content)
	message, changed, err := s.messages.UpdateMessage(cmd.MessageID, func(m *domain.Message) (bool, error) {
		if !m.CanMutate(cmd.UserID) {
			return false, fmt.Errorf("%w: %s cannot edit %s", errors.ErrAuthorization, cmd.UserID, m.ID)
		}
		return m.Edit(content, s.now()), nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	if changed {
		s.notifyMutation(ctx, message, event.New(event.MessageEdited, event.MessageEditedPayload{
			MessageID: message.ID,
			Content:   message.Content,
			EditedAt:  lo.FromPtr(message.EditedAt),
		}))
	}
	return message.Rendered(), nil
}

// Delete soft-deletes a message the requestor sent.
func (s *MessageService) Delete(ctx context.Context, cmd domain.DeleteMessageCommand) (domain.Message, error) {
	if err := domain.Validate(cmd); err != nil {
		return domain.Message{}, err
	}
	message, changed, err := s.messages.UpdateMessage(cmd.MessageID, func(m *domain.Message) (bool, error) {
		if !m.CanMutate(cmd.UserID) {
			return false, fmt.Errorf("%w: %s cannot delete %s", errors.ErrAuthorization, cmd.UserID, m.ID)
		}
		return m.SoftDelete(s.now()), nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	if changed {
		s.notifyMutation(ctx, message, event.New(event.MessageDeleted, event.MessageDeletedPayload{MessageID: message.ID}))
	}
	return message.Rendered(), nil
}

// MarkRead flags the message read and tells the other side, never the acting connection.
func (s *MessageService) MarkRead(ctx context.Context, connID string, cmd domain.MarkReadCommand) (domain.Message, error) {
	if err := domain.Validate(cmd); err != nil {
		return domain.Message{}, err
	}
	message, changed, err := s.messages.UpdateMessage(cmd.MessageID, func(m *domain.Message) (bool, error) {
		if s.settings.EnforceReadOwnership && m.ReceiverID != cmd.UserID {
			return false, fmt.Errorf("%w: %q is not the receiver of %s", errors.ErrAuthorization, cmd.UserID, m.ID)
		}
		return m.MarkRead(s.now()), nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	if !changed {
		return message.Rendered(), nil
	}

	e := event.New(event.MessageReadUpdate, event.MessageReadPayload{MessageID: message.ID, ReadAt: lo.FromPtr(message.ReadAt)})
	if s.settings.BroadcastMutations {
		s.notifier.Broadcast(ctx, connID, e)
	} else {
		s.notifier.ToUsers(ctx, message.Participants(), connID, e)
	}
	s.publisher.Publish(event.New(event.MessageChanged, message))
	return message.Rendered(), nil
}

// LoadHistory returns the pair's visible messages, oldest first.
func (s *MessageService) LoadHistory(userA, userB string) ([]domain.Message, error) {
	if userA == "" || userB == "" {
		return nil, fmt.Errorf("%w: both participants are required", errors.ErrValidation)
	}
	messages, err := s.messages.GetConversation(userA, userB)
	if err != nil {
		return nil, err
	}
	return lo.Filter(messages, func(m domain.Message, _ int) bool { return !m.IsDeleted }), nil
}

// Search runs a full-text query inside one conversation. Deleted messages never match.
func (s *MessageService) Search(ctx context.Context, userA, userB, query string, limit int) ([]domain.Message, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("%w: search is disabled", errors.ErrValidation)
	}
	if userA == "" || userB == "" || query == "" {
		return nil, fmt.Errorf("%w: participants and query are required", errors.ErrValidation)
	}
	ids, err := s.searcher.Search(ctx, userA, userB, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", errors.ErrStorage, err)
	}
	res := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.messages.GetMessage(id)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if message.IsDeleted || !message.Involves(userA) || !message.Involves(userB) {
			continue
		}
		res = append(res, message)
	}
	return res, nil
}

// ClearHistory hard-removes every message of the pair.
func (s *MessageService) ClearHistory(_ context.Context, userA, userB string) (int, error) {
	if userA == "" || userB == "" {
		return 0, fmt.Errorf("%w: both participants are required", errors.ErrValidation)
	}
	ids, err := s.messages.ClearConversation(userA, userB)
	if err != nil {
		return 0, err
	}
	s.publisher.Publish(event.New(event.MessagesCleared, event.ClearedPayload{UserA: userA, UserB: userB, IDs: ids}))
	return len(ids), nil
}

func (s *MessageService) notifyMutation(ctx context.Context, message domain.Message, e event.Event) {
	if s.settings.BroadcastMutations {
		s.notifier.Broadcast(ctx, "", e)
	} else {
		s.notifier.ToUsers(ctx, message.Participants(), "", e)
	}
	s.publisher.Publish(event.New(event.MessageChanged, message))
}

// failed reports a send-time storage problem to the sender and stops the fan-out.
func (s *MessageService) failed(ctx context.Context, connID string, cmd domain.SendMessageCommand, err error) error {
	if !errors.Is(err, errors.ErrStorage) {
		err = fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	s.log.Error("Message not stored", "sender", cmd.SenderID, "receiver", cmd.ReceiverID, "error", err)
	s.toSender(ctx, connID, cmd.SenderID, event.New(event.MessageFailed, event.MessageFailedPayload{
		TempID:     cmd.TempID,
		ReceiverID: cmd.ReceiverID,
		Error:      "message could not be stored",
	}))
	return err
}

// toSender prefers the acting connection and falls back to the sender's current one.
func (s *MessageService) toSender(ctx context.Context, connID, senderID string, e event.Event) {
	if connID != "" && s.notifier.ToConnection(ctx, connID, e) {
		return
	}
	s.notifier.ToUser(ctx, senderID, e)
}

func (s *MessageService) moderate(content string) string {
	if s.moderator == nil || content == "" {
		return content
	}
	return s.moderator.Moderate(content).Content
}

func (s *MessageService) checkLength(content string) error {
	if s.settings.MaxContentLength > 0 && utf8.RuneCountInString(content) > s.settings.MaxContentLength {
		return fmt.Errorf("%w: content longer than %d characters", errors.ErrValidation, s.settings.MaxContentLength)
	}
	return nil
}
