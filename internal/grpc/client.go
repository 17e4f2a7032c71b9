package grpc

import (
	"context"
	"crypto/tls"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient queries a grpc.health.v1.Health service
type HealthClient struct {
	Health healthpb.HealthClient
	conn   *grpc.ClientConn
}

// NewHealthClient creates a health client for addr. The connection is lazy.
func NewHealthClient(addr string, useTLS bool) (*HealthClient, error) {
	var opts []grpc.DialOption
	if useTLS {
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(
		addr,
		append(opts,
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                30 * time.Second,
				Timeout:             10 * time.Second,
				PermitWithoutStream: false,
			}),
		)...,
	)
	if err != nil {
		return nil, err
	}

	return &HealthClient{
		Health: healthpb.NewHealthClient(conn),
		conn:   conn,
	}, nil
}

// Check returns the serving status of service ("" for the whole server)
func (c *HealthClient) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.Health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Closes the gRPC connection
func (c *HealthClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
