package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service health checks ask about; the empty name covers the whole process.
const ServiceName = "chat-signal"

// HealthServer exposes the standard grpc.health.v1 service so orchestrators
// can check the coordinator.
type HealthServer struct {
	log    *slog.Logger
	server *grpc.Server
	health *health.Server
}

func NewHealthServer(log *slog.Logger, opts ...grpc.ServerOption) *HealthServer {
	s := grpc.NewServer(opts...)
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	hs := &HealthServer{log: log, server: s, health: h}
	hs.SetServing(false)
	return hs
}

// SetServing flips both the process-wide and the named service status.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until the listener fails or Stop is called.
func (s *HealthServer) Serve(listener net.Listener) error {
	s.log.Info("Starting gRPC health server", "address", listener.Addr().String())
	if err := s.server.Serve(listener); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("gRPC health server error: %w", err)
	}
	return nil
}

// Run serves until ctx ends. It lets the supervisor own the server lifecycle.
func (s *HealthServer) Run(ctx context.Context, listener net.Listener) error {
	errChan := make(chan error, 1)
	go func() { errChan <- s.Serve(listener) }()
	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errChan:
		return err
	}
}

// Stop reports NOT_SERVING to watchers before draining connections.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
