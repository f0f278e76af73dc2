package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stream-observer/src/config"
	"stream-observer/src/logger"
	"stream-observer/src/models"

	"github.com/nats-io/nats.go"
)

// Tail client: subscribes to the observer's view subjects and prints every
// update as it arrives. Useful to check what consumers actually receive.
func main() {
	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	subject := flag.String("subject", "", "subject filter (defaults to every view update)")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config, "view-tail")

	if config.NATS.Format != "json" {
		appLogger.Warning("configured wire format is '%s', this tool only decodes json", config.NATS.Format)
	}

	// Connect to the broker the observer publishes to
	nc, err := nats.Connect(config.NATS.Servers[0], nats.Name(config.NATS.ClientID+"-tail"))
	if err != nil {
		appLogger.Critical("failed to connect to NATS at %s: %v", config.NATS.Servers[0], err)
		os.Exit(1)
	}
	defer nc.Drain()

	subj := *subject
	if subj == "" {
		subj = config.NATS.SubjectPrefix + ".>"
	}

	sub, err := nc.Subscribe(subj, func(msg *nats.Msg) {
		var update models.MStreamUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			appLogger.Warning("undecodable message on %s: %v", msg.Subject, err)
			return
		}
		if update.View == nil {
			appLogger.Warning("update without a view on %s", msg.Subject)
			return
		}

		view := update.View
		transition := ""
		if update.PreviousStatus != "" && update.PreviousStatus != view.Status {
			transition = fmt.Sprintf(" (%s -> %s)", update.PreviousStatus, view.Status)
		}

		fmt.Printf("[%s] %s | %s/%s status=%s%s progress=%.2f%% withdrawable=%s active=%t\n",
			update.Type, msg.Subject, view.Network, view.StreamID,
			view.Status, transition, view.ProgressPercent,
			view.WithdrawableAmount.String(), view.EffectiveActive)
	})
	if err != nil {
		appLogger.Critical("failed to subscribe to %s: %v", subj, err)
		os.Exit(1)
	}
	defer sub.Unsubscribe()

	appLogger.Info("tailing view updates on '%s' (server: %s)", subj, config.NATS.Servers[0])
	appLogger.Info("Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down...")
}
