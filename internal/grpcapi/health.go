// Package grpcapi exposes the standard gRPC health service. The reports
// service reports SERVING once the vendor schema has been resolved.
package grpcapi

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ReportsService is the health service name reported for the reports API.
const ReportsService = "timekeep.v1.Reports"

const defaultPollInterval = 5 * time.Second

type Config struct {
	Addr         string
	PollInterval time.Duration
	// Ready reports whether the vendor schema resolved.
	Ready func() bool
}

type Server struct {
	addr     string
	interval time.Duration
	ready    func() bool
	logger   zerolog.Logger

	grpc   *grpc.Server
	health *health.Server
}

func NewServer(cfg Config, logger zerolog.Logger) *Server {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ready := cfg.Ready
	if ready == nil {
		ready = func() bool { return true }
	}

	s := &Server{
		addr:     cfg.Addr,
		interval: interval,
		ready:    ready,
		logger:   logger.With().Str("component", "grpcapi").Logger(),
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.Refresh()
	return s
}

// Refresh re-evaluates readiness and updates the served status.
func (s *Server) Refresh() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.ready() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ReportsService, status)
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener serves on lis until ctx is cancelled, polling readiness.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(lis) }()
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("grpc health listening")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("grpc serve: %w", err)
			}
			return nil
		case <-ticker.C:
			s.Refresh()
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpc.GracefulStop()
			<-errCh
			return ctx.Err()
		}
	}
}

func (s *Server) String() string { return "grpc-health" }
