// Package grpc exposes the operational gRPC surface: standard health checks
// and server reflection for grpcurl.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentnest-backend/internal/api/grpc/interceptor"
)

// Services named in health responses alongside the overall "" entry.
const (
	ServiceHTTPAPI   = "rentnest.api.v1"
	ServiceScheduler = "rentnest.scheduler.v1"
)

// Server pairs the grpc.Server with its health registry.
type Server struct {
	*grpc.Server
	health *health.Server
}

// NewServer builds a gRPC server with health and reflection registered. Every
// service starts NOT_SERVING until MarkServing is called.
func NewServer(services ...string) *Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Recovery(), interceptor.Logging()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)

	srv := &Server{Server: s, health: hs}
	srv.set(healthpb.HealthCheckResponse_NOT_SERVING, services...)
	return srv
}

func (s *Server) MarkServing(services ...string) {
	s.set(healthpb.HealthCheckResponse_SERVING, services...)
}

func (s *Server) MarkNotServing(services ...string) {
	s.set(healthpb.HealthCheckResponse_NOT_SERVING, services...)
}

func (s *Server) set(st healthpb.HealthCheckResponse_ServingStatus, services ...string) {
	s.health.SetServingStatus("", st)
	for _, name := range services {
		s.health.SetServingStatus(name, st)
	}
}

// Shutdown flips every status to NOT_SERVING and drains in-flight calls.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
