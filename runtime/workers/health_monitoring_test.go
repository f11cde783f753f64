package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestHealthMonitoring_Samples_Process_And_Counters(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	samples := make(chan Sample, 1)
	worker := NewHealthMonitoringWorker(log, func() (int, int, int) { return 3, 2, 1 }, 10*time.Millisecond).
		OnSample(func(s Sample) {
			select {
			case samples <- s:
			default:
			}
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	select {
	case s := <-samples:
		req.Equal(3, s.Connections)
		req.Equal(2, s.Online)
		req.Equal(1, s.ActiveCalls)
		req.False(s.At.IsZero())
	case <-time.After(2 * time.Second):
		req.Fail("No sample collected")
	}
	req.False(worker.Latest().At.IsZero())

	cancel()
	req.NoError(<-done)
}
