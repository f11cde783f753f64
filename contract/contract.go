//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-signal/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// used when logging supervision lifecycle events.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives events. Consume must not block longer than ctx allows.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// Connection is one live client transport. Delivery is best-effort.
type Connection interface {
	EventSink
	ID() string
}

type IRegistry interface {
	Attach(conn Connection)
	Detach(connID string) (userID string, wasCurrent bool)
	Register(userID, connID string) (superseded string, err error)
	Lookup(userID string) (Connection, bool)
	Connection(connID string) (Connection, bool)
	UserOf(connID string) (string, bool)
	All() []Connection
}

// Publisher hands an event to the asynchronous fanout. It never blocks.
type Publisher interface {
	Publish(e event.Event)
}
