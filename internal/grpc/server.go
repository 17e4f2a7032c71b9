package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall ("") status
const ServiceName = "notes.v1.NotesAPI"

// Probe reports whether a dependency is reachable
type Probe func(ctx context.Context) error

// HealthServer serves the standard gRPC health service. Its status follows
// the result of the last probe run.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	probe  Probe
	logger *slog.Logger
}

// NewHealthServer creates a gRPC server exposing grpc.health.v1.Health.
// The status starts as NOT_SERVING until the first successful probe.
func NewHealthServer(probe Probe, logger *slog.Logger) *HealthServer {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		server: server,
		health: healthServer,
		probe:  probe,
		logger: logger,
	}
}

// Check runs the probe once and publishes the resulting status
func (s *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.probe(ctx); err != nil {
		s.logger.Warn("⚠️ [gRPC] Health probe failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// RunProbe checks health every interval until ctx is done
func (s *HealthServer) RunProbe(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		s.Check(probeCtx)
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Serve accepts connections on lis until Stop is called
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("🔌 [gRPC] Health server running...", "addr", lis.Addr().String())
	return s.server.Serve(lis)
}

// Stop marks the service NOT_SERVING and drains in-flight RPCs
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
