package grpc

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

// EngineService is the service name reported alongside the overall ("") status
const EngineService = "garmentflow.Engine"

// Check probes one dependency; a non-nil error marks the daemon NOT_SERVING
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthServer exposes the standard gRPC health service and reflection.
// Checks run on an interval and flip the serving status for liveness probes.
type HealthServer struct {
	address  string
	interval time.Duration
	checks   []Check
	health   *health.Server
	server   *grpc.Server
	logger   zerolog.Logger
}

// NewHealthServer builds the server; nothing listens until Run
func NewHealthServer(address string, interval time.Duration, logger zerolog.Logger, checks ...Check) *HealthServer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	hs := health.NewServer()
	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	reflection.Register(server)

	return &HealthServer{
		address:  address,
		interval: interval,
		checks:   checks,
		health:   hs,
		server:   server,
		logger:   logger,
	}
}

// Health returns the underlying health service, mainly for tests
func (s *HealthServer) Health() healthpb.HealthServer {
	return s.health
}

// Refresh runs every check once and publishes the resulting status
func (s *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, check := range s.checks {
		probeCtx, cancel := context.WithTimeout(ctx, s.interval)
		err := check.Probe(probeCtx)
		cancel()
		if err != nil {
			s.logger.Warn().Err(err).Str("check", check.Name).Msg("health check failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(EngineService, status)
	return status
}

// Run listens on the configured address until ctx is cancelled
func (s *HealthServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.Refresh(ctx)
	go s.watch(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", listener.Addr().String()).Msg("gRPC health server listening")
		if err := s.server.Serve(listener); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		s.health.Shutdown()
		s.server.GracefulStop()
		return nil
	}
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}
