package domain

import (
	"chat-signal/errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

type CallState int

const (
	CallIdle CallState = iota
	CallCalling
	CallRinging
	CallActive
	CallEnded
	CallRejected
)

func (s CallState) String() string {
	switch s {
	case CallIdle:
		return "idle"
	case CallCalling:
		return "calling"
	case CallRinging:
		return "ringing"
	case CallActive:
		return "active"
	case CallEnded:
		return "ended"
	case CallRejected:
		return "rejected"
	default:
		return fmt.Sprintf("CallState(%d)", int(s))
	}
}

// Terminal states release both participants.
func (s CallState) Terminal() bool {
	return s == CallEnded || s == CallRejected
}

// CallSession is the in-memory record of a negotiating or running 1:1 call.
// The stored State is the callee-side view; the caller sees CallCalling while
// the callee is ringing.
type CallSession struct {
	ID         uuid.UUID
	Type       CallType
	Caller     string
	Callee     string
	CallerConn string
	CalleeConn string
	CallerName string
	State      CallState
	StartedAt  time.Time
	AnsweredAt *time.Time
	EndedAt    *time.Time
}

// NewCallSession dials the callee. The callee must already be reachable.
func NewCallSession(callType CallType, caller, callerConn, callee, calleeConn, callerName string, at time.Time) *CallSession {
	return &CallSession{
		ID:         uuid.New(),
		Type:       callType,
		Caller:     caller,
		Callee:     callee,
		CallerConn: callerConn,
		CalleeConn: calleeConn,
		CallerName: callerName,
		State:      CallRinging,
		StartedAt:  at,
	}
}

// StateFor returns the state as seen by userID, CallIdle for strangers.
func (c *CallSession) StateFor(userID string) CallState {
	switch {
	case userID == c.Caller && c.State == CallRinging:
		return CallCalling
	case userID == c.Caller || userID == c.Callee:
		return c.State
	default:
		return CallIdle
	}
}

// Peer returns the other participant.
func (c *CallSession) Peer(userID string) (string, bool) {
	switch userID {
	case c.Caller:
		return c.Callee, true
	case c.Callee:
		return c.Caller, true
	default:
		return "", false
	}
}

// PeerConn returns the connection the other participant joined the call from.
func (c *CallSession) PeerConn(userID string) string {
	if userID == c.Caller {
		return c.CalleeConn
	}
	return c.CallerConn
}

// UsesConnection reports whether connID carries one side of the call.
func (c *CallSession) UsesConnection(connID string) bool {
	return connID != "" && (c.CallerConn == connID || c.CalleeConn == connID)
}

// Accept moves Ringing to Active. Only the callee may accept.
func (c *CallSession) Accept(userID string, at time.Time) error {
	if userID != c.Callee {
		return fmt.Errorf("%w: %s is not the callee", errors.ErrIllegalTransition, userID)
	}
	if c.State != CallRinging {
		return fmt.Errorf("%w: accept from %s", errors.ErrIllegalTransition, c.State)
	}
	c.State = CallActive
	c.AnsweredAt = &at
	return nil
}

// Reject moves Ringing to Rejected. Only the callee may reject.
func (c *CallSession) Reject(userID string, at time.Time) error {
	if userID != c.Callee {
		return fmt.Errorf("%w: %s is not the callee", errors.ErrIllegalTransition, userID)
	}
	if c.State != CallRinging {
		return fmt.Errorf("%w: reject from %s", errors.ErrIllegalTransition, c.State)
	}
	c.State = CallRejected
	c.EndedAt = &at
	return nil
}

// End is valid from any non-terminal state, for either participant.
func (c *CallSession) End(userID string, at time.Time) error {
	if _, ok := c.Peer(userID); !ok {
		return fmt.Errorf("%w: %s is not in the call", errors.ErrIllegalTransition, userID)
	}
	if c.State.Terminal() || c.State == CallIdle {
		return fmt.Errorf("%w: end from %s", errors.ErrIllegalTransition, c.State)
	}
	c.State = CallEnded
	c.EndedAt = &at
	return nil
}
