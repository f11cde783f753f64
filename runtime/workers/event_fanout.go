package workers

import (
	"chat-signal/contract"
	"chat-signal/domain/event"
	"context"
	"log/slog"
	"time"
)

// EventFanout hands every published event to the permanent sinks (search
// index, presence mirror, exporter). Delivery is best-effort: a sink that
// errors or exceeds the timeout is logged and skipped, never retried.
type EventFanout struct {
	log         *slog.Logger
	events      chan event.Event
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events chan event.Event, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, events: events, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to every sink in turn.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink failed", "sink", sinkName(sink), "event", evt.Type, "error", err)
		}
		cancel()
	}
}

func sinkName(sink contract.EventSink) string {
	if named, ok := sink.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "anonymous"
}
