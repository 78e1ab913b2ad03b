package grpc

import (
	"net"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer is a gRPC server exposing only grpc.health.v1.Health.
type HealthServer struct {
	srv    *gogrpc.Server
	health *health.Server
}

// NewHealthServer reports SERVING for the empty service name and for each
// of services.
func NewHealthServer(services ...string) *HealthServer {
	srv := gogrpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)

	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	for _, name := range services {
		hs.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_SERVING)
	}

	return &HealthServer{srv: srv, health: hs}
}

func (s *HealthServer) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Shutdown flips every service to NOT_SERVING, then drains connections.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
