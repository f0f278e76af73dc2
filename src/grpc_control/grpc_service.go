package grpc_control

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stream-observer/src/config"
	"stream-observer/src/logger"
	"stream-observer/src/watcher"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// -----------------------------------------------------------------------------
// GRPCService handles gRPC server lifecycle
// -----------------------------------------------------------------------------

type GRPCService struct {
	server       *grpc.Server
	healthServer *health.Server
	listener     net.Listener
	config       *config.Config
	logger       *logger.Logger
	observer     *watcher.Observer

	mu      sync.RWMutex
	running bool
}

// -----------------------------------------------------------------------------

// NewGRPCService creates the listener and registers all services. Registration
// happens here because grpc.Server forbids it once Serve has been called.
func NewGRPCService(config *config.Config, logger *logger.Logger, observer *watcher.Observer) (*GRPCService, error) {
	address := fmt.Sprintf("%s:%d", config.GRPC_Host, config.GRPC_Port)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	server := grpc.NewServer(
		grpc.MaxRecvMsgSize(10*1024*1024), // 10MB
		grpc.MaxSendMsgSize(10*1024*1024), // 10MB
	)

	g := &GRPCService{
		server:       server,
		healthServer: health.NewServer(),
		listener:     listener,
		config:       config,
		logger:       logger,
		observer:     observer,
	}

	RegisterControlServiceServer(server, NewControlService(config, logger, observer))

	grpc_health_v1.RegisterHealthServer(server, g.healthServer)
	g.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	g.healthServer.SetServingStatus(ControlServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return g, nil
}

// -----------------------------------------------------------------------------

// Start serves until Stop is called. Signal handling belongs to the process
// entry point, not here: cmd/main runs Start on a goroutine and drives Stop.
func (g *GRPCService) Start() error {
	g.logger.Info("Starting gRPC service on %s", g.listener.Addr().String())

	g.setRunning(true)
	defer g.setRunning(false)

	if err := g.server.Serve(g.listener); err != nil && err != grpc.ErrServerStopped {
		g.logger.Error("gRPC server failed: %v", err)
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop drains the server. Health flips to NOT_SERVING first so clients stop
// routing new calls while in-flight ones finish; the context bounds the drain.
func (g *GRPCService) Stop(ctx context.Context) error {
	g.logger.Info("Stopping gRPC service...")

	g.healthServer.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-ctx.Done():
		g.logger.Warning("gRPC graceful shutdown timeout, forcing stop...")
		g.server.Stop()
	case <-done:
		g.logger.Info("gRPC service stopped gracefully")
	}

	g.setRunning(false)
	return nil
}

// -----------------------------------------------------------------------------

// IsRunning returns whether the gRPC server is running
func (g *GRPCService) IsRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running
}

func (g *GRPCService) setRunning(v bool) {
	g.mu.Lock()
	g.running = v
	g.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Helper functions for running the service
// -----------------------------------------------------------------------------

// StartGRPCServer creates and runs the gRPC server standalone, stopping on
// SIGINT/SIGTERM (simplified entry point)
func StartGRPCServer(config *config.Config, logger *logger.Logger, observer *watcher.Observer) error {
	grpcService, err := NewGRPCService(config, logger, observer)
	if err != nil {
		return fmt.Errorf("failed to create gRPC service: %w", err)
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.Info("Received shutdown signal, stopping gRPC service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		grpcService.Stop(ctx)
	}()

	return grpcService.Start()
}
