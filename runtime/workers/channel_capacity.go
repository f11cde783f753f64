package workers

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelUsage struct {
	Capacity int `json:"capacity"`
	Length   int `json:"length"`
}

// ChannelCapacityWorker samples len and cap of buffered channels and warns when
// one fills past lowCapacityThreshold percent. Reading len and cap never blocks.
type ChannelCapacityWorker struct {
	mu                   sync.RWMutex
	log                  *slog.Logger
	channels             []NamedChannel
	lowCapacityThreshold int
	metricInterval       time.Duration
	usage                map[string]ChannelUsage
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	lowCapacityThreshold int, metricInterval time.Duration) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:                  log,
		channels:             channels,
		lowCapacityThreshold: lowCapacityThreshold,
		metricInterval:       metricInterval,
		usage:                make(map[string]ChannelUsage),
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel capacity sampling")
			return nil
		case <-ticker.C:
			w.Sample()
		}
	}
}

// Sample reads every channel once.
func (w *ChannelCapacityWorker) Sample() {
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		usage := ChannelUsage{Capacity: v.Cap(), Length: v.Len()}
		w.mu.Lock()
		w.usage[nc.Name] = usage
		w.mu.Unlock()

		if usage.Capacity > 0 && usage.Length*100 >= usage.Capacity*w.lowCapacityThreshold {
			w.log.Warn("Channel close to saturation", "name", nc.Name,
				"length", usage.Length, "capacity", usage.Capacity)
		}
	}
}

func (w *ChannelCapacityWorker) Usage() map[string]ChannelUsage {
	w.mu.RLock()
	defer w.mu.RUnlock()
	usage := make(map[string]ChannelUsage, len(w.usage))
	for name, u := range w.usage {
		usage[name] = u
	}
	return usage
}
