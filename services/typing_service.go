package services

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"context"
)

type ITypingService interface {
	SetTyping(ctx context.Context, cmd domain.TypingCommand) error
}

// TypingService relays typing indicators. Nothing is stored or replayed.
type TypingService struct {
	notifier *Notifier
}

func NewTypingService(notifier *Notifier) *TypingService {
	return &TypingService{notifier: notifier}
}

func (s *TypingService) SetTyping(ctx context.Context, cmd domain.TypingCommand) error {
	if err := domain.Validate(cmd); err != nil {
		return err
	}
	s.notifier.ToUser(ctx, cmd.ReceiverID, event.New(event.UserTyping, event.TypingPayload{
		SenderID: cmd.SenderID,
		IsTyping: cmd.IsTyping,
	}))
	return nil
}
