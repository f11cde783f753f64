package services

import (
	"chat-signal/contract"
	"chat-signal/domain"
	"chat-signal/domain/event"
	"chat-signal/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type ICallService interface {
	StartCall(ctx context.Context, connID string, cmd domain.StartCallCommand) error
	AcceptCall(ctx context.Context, connID string, cmd domain.AcceptCallCommand) error
	RejectCall(ctx context.Context, connID string, cmd domain.RejectCallCommand) error
	EndCall(ctx context.Context, connID string, cmd domain.EndCallCommand) error
	ConnectionClosed(ctx context.Context, connID string)
	Relay(ctx context.Context, fromConnID string, cmd domain.RelaySignalCommand) bool
	JoinRoom(ctx context.Context, connID string, cmd domain.JoinRoomCommand) error
	LeaveRoom(ctx context.Context, connID string, cmd domain.LeaveRoomCommand) error
}

// CallService owns the call table and the call rooms. Every state check and
// transition happens under mu; deliveries are flushed after the lock is released.
type CallService struct {
	mu       sync.Mutex
	log      *slog.Logger
	registry contract.IRegistry
	notifier *Notifier
	calls    map[string]*domain.CallSession // user id -> live session
	rooms    map[string]*domain.CallRoom
	now      func() time.Time
}

type outbound struct {
	connID string
	event  event.Event
}

func NewCallService(log *slog.Logger, registry contract.IRegistry, notifier *Notifier) *CallService {
	return &CallService{
		log:      log,
		registry: registry,
		notifier: notifier,
		calls:    make(map[string]*domain.CallSession),
		rooms:    make(map[string]*domain.CallRoom),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartCall dials the callee. Busy and offline outcomes are reported to the
// caller as events, not as errors.
func (s *CallService) StartCall(ctx context.Context, connID string, cmd domain.StartCallCommand) error {
	if err := domain.Validate(cmd); err != nil {
		return err
	}
	out := s.startCall(connID, cmd)
	s.flush(ctx, out)
	return nil
}

func (s *CallService) startCall(connID string, cmd domain.StartCallCommand) []outbound {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.calls[cmd.CallerID]; busy {
		s.log.Debug("Caller already in a call", "caller", cmd.CallerID)
		return []outbound{{connID, event.New(event.CallBusy, event.CallPayload{ReceiverID: cmd.CalleeID})}}
	}
	calleeConn, online := s.registry.Lookup(cmd.CalleeID)
	if !online {
		return []outbound{{connID, event.New(event.CallUnavailable, event.CallPayload{
			ReceiverID: cmd.CalleeID,
			Reason:     event.ReasonOffline,
		})}}
	}
	if _, busy := s.calls[cmd.CalleeID]; busy {
		return []outbound{{connID, event.New(event.CallRejected, event.CallPayload{
			FromUserID: cmd.CalleeID,
			ReceiverID: cmd.CalleeID,
			Reason:     event.ReasonBusy,
		})}}
	}

	session := domain.NewCallSession(cmd.CallType, cmd.CallerID, connID, cmd.CalleeID, calleeConn.ID(), cmd.CallerName, s.now())
	s.calls[cmd.CallerID] = session
	s.calls[cmd.CalleeID] = session
	s.log.Debug("Call ringing", "call", session.ID, "caller", cmd.CallerID, "callee", cmd.CalleeID)

	return []outbound{{calleeConn.ID(), event.New(event.IncomingCall, event.IncomingCallPayload{
		CallID:     session.ID,
		From:       connID,
		FromUserID: cmd.CallerID,
		CallType:   cmd.CallType,
		CallerName: cmd.CallerName,
	})}}
}

func (s *CallService) AcceptCall(ctx context.Context, connID string, cmd domain.AcceptCallCommand) error {
	if err := domain.Validate(cmd); err != nil {
		return err
	}
	s.mu.Lock()
	session, err := s.sessionOf(cmd.UserID)
	if err == nil {
		err = session.Accept(cmd.UserID, s.now())
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if connID != "" {
		session.CalleeConn = connID
	}
	out := outbound{session.CallerConn, event.New(event.CallAccepted, event.CallPayload{
		CallID:     session.ID,
		From:       session.CalleeConn,
		FromUserID: cmd.UserID,
	})}
	s.mu.Unlock()

	s.flush(ctx, []outbound{out})
	return nil
}

func (s *CallService) RejectCall(ctx context.Context, _ string, cmd domain.RejectCallCommand) error {
	if err := domain.Validate(cmd); err != nil {
		return err
	}
	s.mu.Lock()
	session, err := s.sessionOf(cmd.UserID)
	if err == nil {
		err = session.Reject(cmd.UserID, s.now())
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.release(session)
	out := outbound{session.CallerConn, event.New(event.CallRejected, event.CallPayload{
		CallID:     session.ID,
		From:       session.CalleeConn,
		FromUserID: cmd.UserID,
		Reason:     event.ReasonRejected,
	})}
	s.mu.Unlock()

	s.flush(ctx, []outbound{out})
	return nil
}

func (s *CallService) EndCall(ctx context.Context, _ string, cmd domain.EndCallCommand) error {
	if err := domain.Validate(cmd); err != nil {
		return err
	}
	s.mu.Lock()
	out, err := s.end(cmd.UserID, event.ReasonHangup)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.flush(ctx, []outbound{out})
	return nil
}

// ConnectionClosed ends every call one side joined from connID, as if that
// side hung up, and removes the connection from its rooms.
func (s *CallService) ConnectionClosed(ctx context.Context, connID string) {
	var out []outbound
	s.mu.Lock()
	for _, session := range s.calls {
		if !session.UsesConnection(connID) {
			continue
		}
		userID := session.Callee
		if session.CallerConn == connID {
			userID = session.Caller
		}
		o, err := s.end(userID, event.ReasonDisconnected)
		if err != nil {
			s.log.Debug("Call already over", "user", userID, "error", err)
			continue
		}
		out = append(out, o)
	}
	for roomID := range s.rooms {
		out = append(out, s.leave(roomID, connID)...)
	}
	s.mu.Unlock()
	s.flush(ctx, out)
}

// JoinRoom adds the connection to a call room. The other members learn who
// joined and the joiner receives the connection ids already present.
func (s *CallService) JoinRoom(ctx context.Context, connID string, cmd domain.JoinRoomCommand) error {
	if err := domain.Validate(cmd); err != nil {
		return err
	}
	s.mu.Lock()
	room, ok := s.rooms[cmd.RoomID]
	if !ok {
		room = domain.NewCallRoom(cmd.RoomID)
		s.rooms[cmd.RoomID] = room
	}
	room.Join(connID, cmd.UserID)
	var out []outbound
	for _, member := range room.Members() {
		if member.ConnID == connID {
			continue
		}
		out = append(out, outbound{member.ConnID, event.New(event.UserJoined, event.RoomMemberPayload{
			UserID: cmd.UserID,
			RoomID: cmd.RoomID,
		})})
	}
	out = append(out, outbound{connID, event.New(event.RoomUsers, event.RoomUsersPayload{
		RoomID: cmd.RoomID,
		Users:  room.ConnIDs(),
	})})
	s.mu.Unlock()

	s.flush(ctx, out)
	return nil
}

// LeaveRoom is a no-op for a connection that is not in the room.
func (s *CallService) LeaveRoom(ctx context.Context, connID string, cmd domain.LeaveRoomCommand) error {
	if err := domain.Validate(cmd); err != nil {
		return err
	}
	s.mu.Lock()
	out := s.leave(cmd.RoomID, connID)
	s.mu.Unlock()
	s.flush(ctx, out)
	return nil
}

// leave must be called with mu held. Empty rooms are dropped.
func (s *CallService) leave(roomID, connID string) []outbound {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	left, ok := room.Leave(connID)
	if !ok {
		return nil
	}
	if room.Empty() {
		delete(s.rooms, roomID)
		return nil
	}
	out := make([]outbound, 0, len(room.Members()))
	for _, member := range room.Members() {
		out = append(out, outbound{member.ConnID, event.New(event.UserLeft, event.RoomMemberPayload{
			UserID: left.UserID,
			RoomID: roomID,
		})})
	}
	return out
}

// Rooms counts call rooms with at least one member.
func (s *CallService) Rooms() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Relay forwards an opaque WebRTC payload to a connection by id. Unknown
// targets are dropped; the sender is never told.
func (s *CallService) Relay(ctx context.Context, fromConnID string, cmd domain.RelaySignalCommand) bool {
	if err := domain.Validate(cmd); err != nil {
		s.log.Debug("Invalid signal dropped", "from", fromConnID, "error", err)
		return false
	}
	e := event.New(signalType(cmd.Kind), event.SignalPayload{
		Kind:   cmd.Kind,
		From:   fromConnID,
		RoomID: cmd.RoomID,
		Data:   cmd.Payload,
	})
	return s.notifier.ToConnection(ctx, cmd.To, e)
}

// Session returns a copy of the user's live session.
func (s *CallService) Session(userID string) (domain.CallSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.calls[userID]
	if !ok {
		return domain.CallSession{}, false
	}
	return *session, true
}

// ActiveCalls counts sessions, not participants.
func (s *CallService) ActiveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls) / 2
}

// end must be called with mu held.
func (s *CallService) end(userID, reason string) (outbound, error) {
	session, err := s.sessionOf(userID)
	if err != nil {
		return outbound{}, err
	}
	if err = session.End(userID, s.now()); err != nil {
		return outbound{}, err
	}
	s.release(session)
	peer, _ := session.Peer(userID)
	return outbound{session.PeerConn(userID), event.New(event.CallEnded, event.CallPayload{
		CallID:     session.ID,
		FromUserID: userID,
		ReceiverID: peer,
		Reason:     reason,
	})}, nil
}

func (s *CallService) sessionOf(userID string) (*domain.CallSession, error) {
	session, ok := s.calls[userID]
	if !ok {
		return nil, fmt.Errorf("%w: no call for %s", errors.ErrIllegalTransition, userID)
	}
	return session, nil
}

func (s *CallService) release(session *domain.CallSession) {
	if s.calls[session.Caller] == session {
		delete(s.calls, session.Caller)
	}
	if s.calls[session.Callee] == session {
		delete(s.calls, session.Callee)
	}
}

func (s *CallService) flush(ctx context.Context, out []outbound) {
	for _, o := range out {
		s.notifier.ToConnection(ctx, o.connID, o.event)
	}
}

func signalType(kind domain.SignalKind) event.Type {
	switch kind {
	case domain.SignalAnswer:
		return event.Answer
	case domain.SignalCandidate:
		return event.IceCandidate
	default:
		return event.Offer
	}
}
