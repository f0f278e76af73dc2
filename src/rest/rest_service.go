package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stream-observer/src/config"
	"stream-observer/src/logger"

	"github.com/gorilla/mux"
)

// -----------------------------------------------------------------------------
// RESTService handles the HTTP server lifecycle for the REST gateway
// -----------------------------------------------------------------------------

type RESTService struct {
	server  *http.Server
	handler *APIHandler
	config  *config.Config
	logger  *logger.Logger
	running bool
}

// -----------------------------------------------------------------------------

// NewRESTService creates the gateway handler, wires the routes and prepares
// the HTTP server
func NewRESTService(config *config.Config, logger *logger.Logger) (*RESTService, error) {
	handler, err := NewAPIHandler(config, logger)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return &RESTService{
		server:  server,
		handler: handler,
		config:  config,
		logger:  logger,
		running: false,
	}, nil
}

// -----------------------------------------------------------------------------

// Start runs the HTTP server and blocks until it is shut down
func (r *RESTService) Start() error {
	r.logger.Info("Starting REST service on %s", r.server.Addr)

	r.running = true
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		r.running = false
		return fmt.Errorf("REST server failed: %w", err)
	}

	r.running = false
	return nil
}

// -----------------------------------------------------------------------------

// Stop drains in-flight requests, then closes the control client connection
func (r *RESTService) Stop(ctx context.Context) error {
	r.logger.Info("Stopping REST service...")

	if err := r.server.Shutdown(ctx); err != nil {
		r.logger.Warning("REST graceful shutdown failed, forcing close: %v", err)
		r.server.Close()
	}

	if err := r.handler.Close(); err != nil {
		r.logger.Warning("failed to close control client connection: %v", err)
	}

	r.running = false
	r.logger.Info("REST service stopped")
	return nil
}

// -----------------------------------------------------------------------------

// IsRunning returns whether the HTTP server is running
func (r *RESTService) IsRunning() bool {
	return r.running
}
