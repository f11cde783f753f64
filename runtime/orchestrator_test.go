package runtime_test

import (
	"chat-signal/domain"
	"chat-signal/domain/event"
	"chat-signal/errors"
	"chat-signal/internal/fake"
	"chat-signal/mocks"
	"chat-signal/repositories"
	"chat-signal/runtime"
	"chat-signal/runtime/workers"
	"chat-signal/services"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	ctx          context.Context
	users        repositories.IUserRepository
	calls        *services.CallService
	orchestrator *runtime.Orchestrator
	bus          *runtime.EventBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	bus := runtime.NewEventBus(log, 64)
	users := repositories.NewUserRepository(db)
	contacts := repositories.NewContactRepository(db)
	notifier := services.NewNotifier(log, registry)
	calls := services.NewCallService(log, registry, notifier)

	svcs := runtime.Services{
		Presence: services.NewPresenceService(log, registry, users, notifier, bus),
		Messages: services.NewMessageService(log, repositories.NewMessageRepository(db, log), contacts, notifier, bus, services.MessageSettings{}),
		Calls:    calls,
		Typing:   services.NewTypingService(notifier),
	}
	return &fixture{
		ctx:          context.Background(),
		users:        users,
		calls:        calls,
		bus:          bus,
		orchestrator: runtime.NewOrchestrator(log, workers.NewSupervisor(log, 0), registry, bus, svcs, time.Second),
	}
}

func (f *fixture) connect(t *testing.T, userID string) *fake.Connection {
	t.Helper()
	require.NoError(t, f.users.SaveUser(domain.User{ID: userID, DisplayName: userID}))
	conn := fake.NewConnection()
	f.orchestrator.Connect(conn)
	require.NoError(t, f.orchestrator.Dispatch(f.ctx, conn.ID(), domain.RegisterOnlineCommand{UserID: userID}))
	conn.Reset()
	return conn
}

func TestOrchestrator_Dispatch_Send_Binds_Registered_Sender(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, bob := f.connect(t, "alice"), f.connect(t, "bob")

	// When alice sends without naming herself
	err := f.orchestrator.Dispatch(f.ctx, alice.ID(), domain.SendMessageCommand{
		ReceiverID: "bob", Content: "hi", Type: domain.MessageText,
	})

	// Then the registered identity is used
	req.NoError(err)
	pushed := bob.Of(event.ReceiveMessage)
	req.Len(pushed, 1)
	req.Equal("alice", pushed[0].Payload.(event.MessagePayload).SenderID)
}

func TestOrchestrator_Dispatch_Rejects_Impersonation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect(t, "alice")
	f.connect(t, "bob")

	err := f.orchestrator.Dispatch(f.ctx, alice.ID(), domain.SendMessageCommand{
		SenderID: "bob", ReceiverID: "carol", Content: "hi", Type: domain.MessageText,
	})

	req.ErrorIs(err, errors.ErrAuthorization)
}

func TestOrchestrator_Dispatch_Anonymous_Without_Identity(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	conn := fake.NewConnection()
	f.orchestrator.Connect(conn)

	err := f.orchestrator.Dispatch(f.ctx, conn.ID(), domain.StartCallCommand{CalleeID: "bob", CallType: domain.CallAudio})

	req.ErrorIs(err, errors.ErrUnauthenticated)
}

func TestOrchestrator_Dispatch_Unknown_Command(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	conn := f.connect(t, "alice")

	req.ErrorIs(f.orchestrator.Dispatch(f.ctx, conn.ID(), nil), errors.ErrValidation)
}

func TestOrchestrator_Disconnect_Ends_Call_And_Goes_Offline(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, bob := f.connect(t, "alice"), f.connect(t, "bob")

	// Given an active call
	req.NoError(f.orchestrator.Dispatch(f.ctx, alice.ID(), domain.StartCallCommand{CalleeID: "bob", CallType: domain.CallVideo}))
	req.NoError(f.orchestrator.Dispatch(f.ctx, bob.ID(), domain.AcceptCallCommand{}))
	req.Equal(1, f.calls.ActiveCalls())

	// When alice's connection drops
	f.orchestrator.Disconnect(f.ctx, alice.ID())

	// Then bob is told the call ended and alice is offline
	ended := bob.Of(event.CallEnded)
	req.Len(ended, 1)
	req.Equal(event.ReasonDisconnected, ended[0].Payload.(event.CallPayload).Reason)
	req.Zero(f.calls.ActiveCalls())

	user, err := f.users.GetUser("alice")
	req.NoError(err)
	req.Equal(domain.StatusOffline, user.Status)
}

func TestOrchestrator_Start_Feeds_Permanent_Sinks(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)

	stored := make(chan event.Event, 1)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e event.Event) error {
			if e.Type == event.MessageStored {
				stored <- e
			}
			return nil
		}).AnyTimes()

	f.orchestrator.Add(sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req.NoError(f.orchestrator.Start(ctx))
	defer f.orchestrator.Stop()

	alice := f.connect(t, "alice")
	req.NoError(f.orchestrator.Dispatch(f.ctx, alice.ID(), domain.SendMessageCommand{
		ReceiverID: "bob", Content: "for the index", Type: domain.MessageText,
	}))

	select {
	case e := <-stored:
		req.Equal("for the index", e.Payload.(domain.Message).Content)
	case <-time.After(2 * time.Second):
		req.Fail("Sink never received the stored message")
	}
}
