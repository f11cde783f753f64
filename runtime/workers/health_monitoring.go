package workers

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Sample is one snapshot of the coordinator's load.
type Sample struct {
	At          time.Time `json:"at"`
	CPU         float64   `json:"cpuPercent"`
	RAM         float32   `json:"ramPercent"`
	Connections int       `json:"connections"`
	Online      int       `json:"online"`
	ActiveCalls int       `json:"activeCalls"`
}

// LoadCounter reports the in-memory counters sampled next to process metrics.
type LoadCounter func() (connections, online, activeCalls int)

// HealthMonitoringWorker samples CPU and RAM of the running process together
// with the live-connection counters, at a fixed interval.
type HealthMonitoringWorker struct {
	mu             sync.RWMutex
	log            *slog.Logger
	counters       LoadCounter
	metricInterval time.Duration
	latest         Sample
	onSample       func(Sample)
}

func NewHealthMonitoringWorker(log *slog.Logger, counters LoadCounter, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{log: log, counters: counters, metricInterval: metricInterval}
}

// OnSample registers a callback invoked after each sample.
func (w *HealthMonitoringWorker) OnSample(fn func(Sample)) *HealthMonitoringWorker {
	w.onSample = fn
	return w
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			sample, err := w.collect(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.mu.Lock()
			w.latest = sample
			w.mu.Unlock()
			w.log.Debug("Health sample",
				"cpu", sample.CPU, "ram", sample.RAM,
				"connections", sample.Connections, "online", sample.Online, "calls", sample.ActiveCalls)
			if w.onSample != nil {
				w.onSample(sample)
			}
		}
	}
}

func (w *HealthMonitoringWorker) collect(p *process.Process) (Sample, error) {
	cpu, err := p.CPUPercent()
	if err != nil {
		return Sample{}, err
	}
	ram, err := p.MemoryPercent()
	if err != nil {
		return Sample{}, err
	}
	sample := Sample{At: time.Now().UTC(), CPU: cpu, RAM: ram}
	if w.counters != nil {
		sample.Connections, sample.Online, sample.ActiveCalls = w.counters()
	}
	return sample, nil
}

// Latest returns the last sample, zero before the first tick.
func (w *HealthMonitoringWorker) Latest() Sample {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}
