// Package grpcserver exposes the API server's health over gRPC.
//
// It registers the standard grpc.health.v1 service and keeps its status in
// step with the backing store: SERVING while the repository answers a ping,
// NOT_SERVING otherwise.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the health key for the applications API. The empty name
// reports overall server health and follows the same status.
const ServiceName = "tracker.Applications"

// Pinger is satisfied by every applications.Repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps a grpc.Server with the health service registered.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	store  Pinger
	log    *zap.Logger
}

// NewServer constructs a gRPC Server reporting the health of store.
func NewServer(store Pinger, log *zap.Logger) *Server {
	s := &Server{
		health: health.NewServer(),
		store:  store,
		log:    log,
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.logUnary))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// GRPC returns the underlying server for Serve and Stop.
func (s *Server) GRPC() *grpc.Server { return s.grpc }

// Check pings the store once and publishes the result.
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.setStatus(st)
	return st
}

// Watch runs Check every interval until ctx is cancelled, then marks the
// service NOT_SERVING for good.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-t.C:
			s.Check(ctx)
		}
	}
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// logUnary logs every unary call with its status code.
func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := codes.OK
	if err != nil {
		code = status.Code(err)
	}
	s.log.Debug("grpc call",
		zap.String("method", info.FullMethod),
		zap.String("code", code.String()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, err
}
