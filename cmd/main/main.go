package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stream-observer/src/config"
	"stream-observer/src/grpc_control"
	"stream-observer/src/logger"
	"stream-observer/src/rest"
	"stream-observer/src/watcher"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config, config.Name)

	// Create observer from config
	observerService := watcher.NewObserver(config, appLogger)

	// Create control service
	controlService, err := grpc_control.NewGRPCService(config, appLogger, observerService)
	if err != nil {
		appLogger.Critical("failed to create control service: %v", err)
		os.Exit(1)
	}

	// Create REST gateway (a pure gRPC client of the control service)
	restService, err := rest.NewRESTService(config, appLogger)
	if err != nil {
		appLogger.Critical("failed to create REST service: %v", err)
		os.Exit(1)
	}

	// Start gRPC control server
	go func() {
		appLogger.Info("starting gRPC control service on %s:%d", config.GRPC_Host, config.GRPC_Port)
		if err := controlService.Start(); err != nil {
			appLogger.Error("control server error: %v", err)
			os.Exit(1)
		}
	}()

	// Start REST API server
	go func() {
		appLogger.Info("starting REST API server on :%d", config.Port)
		if err := restService.Start(); err != nil {
			appLogger.Error("REST API server error: %v", err)
			os.Exit(1)
		}
	}()

	// Start observer
	if err := observerService.Start(); err != nil {
		appLogger.Critical("failed to start observer: %v", err)
		os.Exit(1)
	}

	appLogger.Info("stream observer running. REST API: :%d, gRPC: %s:%d",
		config.Port, config.GRPC_Host, config.GRPC_Port)
	appLogger.Info("Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down...")

	// Outermost layer first: REST stops taking requests, then the control
	// plane drains, then the watchers and publisher go down
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := restService.Stop(shutdownCtx); err != nil {
		appLogger.Warning("REST API stop: %v", err)
	}
	if err := controlService.Stop(shutdownCtx); err != nil {
		appLogger.Warning("control service stop: %v", err)
	}
	if err := observerService.Stop(); err != nil {
		appLogger.Warning("observer stop: %v", err)
	}
}
