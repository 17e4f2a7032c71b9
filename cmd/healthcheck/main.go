// Command healthcheck queries the server's gRPC health service and exits
// non-zero unless it reports SERVING. Intended for container health checks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/notesapp/notes-api/internal/config"
	internalgrpc "github.com/notesapp/notes-api/internal/grpc"
	"github.com/notesapp/notes-api/internal/logger"
)

func main() {
	cfg := config.LoadConfig()
	appLogger := logger.New(cfg)

	addr := fmt.Sprintf("127.0.0.1:%s", cfg.ApiGrpcPort)
	os.Exit(run(appLogger, addr))
}

func run(log *slog.Logger, addr string) int {
	client, err := internalgrpc.NewHealthClient(addr, false)
	if err != nil {
		log.Error("❌ [Healthcheck] Failed to create client", "addr", addr, "error", err)
		return 1
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	status, err := client.Check(ctx, internalgrpc.ServiceName)
	if err != nil {
		log.Error("❌ [Healthcheck] Health check failed", "addr", addr, "error", err)
		return 1
	}
	if status != healthpb.HealthCheckResponse_SERVING {
		log.Warn("⚠️ [Healthcheck] Service not serving", "status", status.String())
		return 1
	}

	log.Debug("✅ [Healthcheck] Service serving")
	return 0
}
