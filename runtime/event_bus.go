package runtime

import (
	"chat-signal/domain/event"
	"log/slog"
)

// EventBus is the buffered hand-off between services and the fanout worker.
// Publishing never blocks: when the buffer is full the event is dropped.
type EventBus struct {
	log    *slog.Logger
	events chan event.Event
}

func NewEventBus(log *slog.Logger, bufferSize int) *EventBus {
	return &EventBus{log: log, events: make(chan event.Event, bufferSize)}
}

func (b *EventBus) Publish(e event.Event) {
	select {
	case b.events <- e:
	default:
		b.log.Debug("Fanout buffer full, event dropped", "event", e.Type)
	}
}

func (b *EventBus) Events() chan event.Event {
	return b.events
}
