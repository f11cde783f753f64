// Package runtime wires live connections to the services and runs the
// background workers. It holds no business rules.
package runtime

import (
	"chat-signal/contract"
	"chat-signal/domain"
	"chat-signal/errors"
	"chat-signal/runtime/workers"
	"chat-signal/services"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Services groups what the orchestrator dispatches to.
type Services struct {
	Presence services.IPresenceService
	Messages services.IMessageService
	Calls    services.ICallService
	Typing   services.ITypingService
}

type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	registry       *Registry
	supervisor     contract.ISupervisor
	bus            *EventBus
	services       Services
	permanentSinks []contract.EventSink
	extraWorkers   []contract.Worker
	sinkTimeout    time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	bus *EventBus, svcs Services, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:         log,
		registry:    registry,
		supervisor:  supervisor,
		bus:         bus,
		services:    svcs,
		sinkTimeout: sinkTimeout,
	}
}

// Add registers permanent sinks fed by the fanout worker. Call before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// AddWorkers registers extra supervised workers. Call before Start.
func (o *Orchestrator) AddWorkers(w ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extraWorkers = append(o.extraWorkers, w...)
}

// Connect makes a new connection addressable before it registers a user.
func (o *Orchestrator) Connect(conn contract.Connection) {
	o.registry.Attach(conn)
	o.log.Debug("Connection opened", "conn", conn.ID())
}

// Disconnect tears down calls carried by the connection, then its presence.
func (o *Orchestrator) Disconnect(ctx context.Context, connID string) {
	o.services.Calls.ConnectionClosed(ctx, connID)
	userID, wentOffline := o.services.Presence.Unregister(ctx, connID)
	o.log.Debug("Connection closed", "conn", connID, "user", userID, "offline", wentOffline)
}

// Dispatch runs one command for a connection. Commands of a single
// connection are dispatched sequentially by its reader.
func (o *Orchestrator) Dispatch(ctx context.Context, connID string, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.RegisterOnlineCommand:
		return o.services.Presence.RegisterOnline(ctx, c.UserID, connID)

	case domain.SendMessageCommand:
		actor, err := o.actor(connID, c.SenderID)
		if err != nil {
			return err
		}
		c.SenderID = actor
		_, err = o.services.Messages.Send(ctx, connID, c)
		return err

	case domain.EditMessageCommand:
		actor, err := o.actor(connID, c.UserID)
		if err != nil {
			return err
		}
		c.UserID = actor
		_, err = o.services.Messages.Edit(ctx, c)
		return err

	case domain.DeleteMessageCommand:
		actor, err := o.actor(connID, c.UserID)
		if err != nil {
			return err
		}
		c.UserID = actor
		_, err = o.services.Messages.Delete(ctx, c)
		return err

	case domain.MarkReadCommand:
		if actor, ok := o.registry.UserOf(connID); ok {
			c.UserID = actor
		}
		_, err := o.services.Messages.MarkRead(ctx, connID, c)
		return err

	case domain.TypingCommand:
		actor, err := o.actor(connID, c.SenderID)
		if err != nil {
			return err
		}
		c.SenderID = actor
		return o.services.Typing.SetTyping(ctx, c)

	case domain.StartCallCommand:
		actor, err := o.actor(connID, c.CallerID)
		if err != nil {
			return err
		}
		c.CallerID = actor
		return o.services.Calls.StartCall(ctx, connID, c)

	case domain.AcceptCallCommand:
		actor, err := o.actor(connID, c.UserID)
		if err != nil {
			return err
		}
		c.UserID = actor
		return o.services.Calls.AcceptCall(ctx, connID, c)

	case domain.RejectCallCommand:
		actor, err := o.actor(connID, c.UserID)
		if err != nil {
			return err
		}
		c.UserID = actor
		return o.services.Calls.RejectCall(ctx, connID, c)

	case domain.EndCallCommand:
		actor, err := o.actor(connID, c.UserID)
		if err != nil {
			return err
		}
		c.UserID = actor
		return o.services.Calls.EndCall(ctx, connID, c)

	case domain.JoinRoomCommand:
		actor, err := o.actor(connID, c.UserID)
		if err != nil {
			return err
		}
		c.UserID = actor
		return o.services.Calls.JoinRoom(ctx, connID, c)

	case domain.LeaveRoomCommand:
		actor, err := o.actor(connID, c.UserID)
		if err != nil {
			return err
		}
		c.UserID = actor
		return o.services.Calls.LeaveRoom(ctx, connID, c)

	case domain.RelaySignalCommand:
		o.services.Calls.Relay(ctx, connID, c)
		return nil

	default:
		return fmt.Errorf("%w: unknown command %T", errors.ErrValidation, cmd)
	}
}

// actor resolves who acts on a connection. A registered connection may only
// act as its own user; an anonymous one must name the user explicitly.
func (o *Orchestrator) actor(connID, claimed string) (string, error) {
	registered, ok := o.registry.UserOf(connID)
	switch {
	case ok && claimed != "" && claimed != registered:
		return "", fmt.Errorf("%w: connection speaks for %s, not %s", errors.ErrAuthorization, registered, claimed)
	case ok:
		return registered, nil
	case claimed == "":
		return "", fmt.Errorf("%w: register-online first", errors.ErrUnauthenticated)
	default:
		return claimed, nil
	}
}

// Start registers the fanout worker and every extra worker, then runs the
// supervisor in the background.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	fanout := workers.NewEventFanout(o.log, o.bus.Events(), o.sinkTimeout).Add(o.permanentSinks...)
	o.supervisor.Add(fanout)
	o.supervisor.Add(o.extraWorkers...)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "sinks", len(o.permanentSinks))
	go o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}
