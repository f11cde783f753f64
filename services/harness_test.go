package services_test

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"chat-signal/internal/fake"
	"chat-signal/repositories"
	"chat-signal/runtime"
	"chat-signal/services"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Of(t event.Type) []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res []event.Event
	for _, e := range p.events {
		if e.Type == t {
			res = append(res, e)
		}
	}
	return res
}

// harness wires every service on a real registry and a badger store in t.TempDir().
type harness struct {
	t         *testing.T
	ctx       context.Context
	log       *slog.Logger
	registry  *runtime.Registry
	users     repositories.IUserRepository
	contacts  repositories.IContactRepository
	messages  repositories.IMessageRepository
	publisher *recordingPublisher
	notifier  *services.Notifier
	presence  *services.PresenceService
	message   *services.MessageService
	calls     *services.CallService
	typing    *services.TypingService
	contact   *services.ContactService
}

func newHarness(t *testing.T, settings services.MessageSettings) *harness {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	h := &harness{
		t:         t,
		ctx:       context.Background(),
		log:       log,
		registry:  runtime.NewRegistry(),
		users:     repositories.NewUserRepository(db),
		contacts:  repositories.NewContactRepository(db),
		messages:  repositories.NewMessageRepository(db, log),
		publisher: &recordingPublisher{},
	}
	h.notifier = services.NewNotifier(log, h.registry)
	h.presence = services.NewPresenceService(log, h.registry, h.users, h.notifier, h.publisher)
	h.message = services.NewMessageService(log, h.messages, h.contacts, h.notifier, h.publisher, settings)
	h.calls = services.NewCallService(log, h.registry, h.notifier)
	h.typing = services.NewTypingService(h.notifier)
	h.contact = services.NewContactService(log, h.contacts, h.users, h.notifier)
	return h
}

// online stores the user and registers a fresh connection for them.
func (h *harness) online(userID string) *fake.Connection {
	h.t.Helper()
	require.NoError(h.t, h.users.SaveUser(domain.User{ID: userID, DisplayName: userID, Status: domain.StatusOffline}))
	conn := fake.NewConnection()
	h.registry.Attach(conn)
	require.NoError(h.t, h.presence.RegisterOnline(h.ctx, userID, conn.ID()))
	return conn
}

func (h *harness) send(conn *fake.Connection, from, to, content, tempID string) domain.Message {
	h.t.Helper()
	message, err := h.message.Send(h.ctx, conn.ID(), domain.SendMessageCommand{
		SenderID:   from,
		ReceiverID: to,
		Content:    content,
		Type:       domain.MessageText,
		TempID:     tempID,
	})
	require.NoError(h.t, err)
	return message
}

func resetAll(conns ...*fake.Connection) {
	for _, c := range conns {
		c.Reset()
	}
}
