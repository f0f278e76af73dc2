package publishers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"stream-observer/src/interfaces"
	"stream-observer/src/logger"
	"stream-observer/src/models"

	"github.com/nats-io/nats.go"
)

// -----------------------------------------------------------------------------
// NATSPublisher implements interfaces.IPublisher and adds publishing logic
// -----------------------------------------------------------------------------

// NATSPublisher pushes recomputed stream views onto the NATS message bus.
// Subjects are <prefix>.<network>.<streamID>, so consumers can subscribe to a
// whole network or a single stream. With JetStream enabled, publishes carry a
// message ID derived from the view's computation time, letting the server
// deduplicate redeliveries of the same projection.
type NATSPublisher struct {
	name   string
	config *models.MNATSConfig
	logger *logger.Logger

	useJetStream bool

	mu sync.RWMutex

	nc         *nats.Conn             // NATS core connection
	js         nats.JetStreamContext  // JetStream context (if enabled)
	serializer interfaces.ISerializer // serialize update before sending

	connected bool
}

// -----------------------------------------------------------------------------

// NewNATSPublisher creates a new NATS publisher instance
func NewNATSPublisher(config *models.MNATSConfig, logger *logger.Logger, serializer interfaces.ISerializer) interfaces.IPublisher {
	return &NATSPublisher{
		name:   config.ClientID,
		config: config,
		logger: logger,

		serializer: serializer,
	}
}

// -----------------------------------------------------------------------------

// OnStreamUpdate is the central callback where every recomputed view lands.
func (np *NATSPublisher) OnStreamUpdate(update *models.MStreamUpdate) {
	if update == nil || update.View == nil {
		return
	}
	view := update.View

	if update.Type == models.UpdateTypeInitial {
		np.logger.Info("%s : INITIAL: %s/%s status=%s progress=%.2f%%",
			np.name, view.Network, view.StreamID, view.Status, view.ProgressPercent)
	}
	if update.Type == models.UpdateTypeUpdate && update.PreviousStatus != view.Status {
		np.logger.Info("%s : TRANSITION: %s/%s %s -> %s",
			np.name, view.Network, view.StreamID, update.PreviousStatus, view.Status)
	}

	updateSerialized, err := np.serializer.Marshal(update)
	if err != nil {
		np.logger.Error("%s : failed to serialize update for %s/%s: %v", np.name, view.Network, view.StreamID, err)
		return
	}

	subject := fmt.Sprintf("%s.%s", view.Network, view.StreamID)
	msgID := fmt.Sprintf("%s/%s@%d", view.Network, view.StreamID, view.ComputedAt)

	if err := np.publish(subject, updateSerialized, msgID); err != nil {
		// High severity: a publish failure means consumers miss a view change
		np.logger.Error("%s : failed to publish %s update for %s/%s: %v",
			np.name, update.Type, view.Network, view.StreamID, err)
	}
}

// -----------------------------------------------------------------------------

// publish routes one payload to core NATS or JetStream, whichever Connect
// selected. Core delivery is fire-and-forget; JetStream waits for the ack and
// uses msgID for server-side duplicate suppression.
func (np *NATSPublisher) publish(subject string, data []byte, msgID string) error {
	if !np.IsConnected() {
		return fmt.Errorf("nats client not connected")
	}

	fullSubject := subject
	if np.config.SubjectPrefix != "" {
		fullSubject = np.config.SubjectPrefix + "." + subject
	}

	if np.useJetStream {
		if np.js == nil {
			return fmt.Errorf("jetstream is not initialized or enabled")
		}
		if _, err := np.js.Publish(fullSubject, data, nats.MsgId(msgID)); err != nil {
			return fmt.Errorf("jetstream publish to %s: %w", fullSubject, err)
		}
		return nil
	}

	return np.nc.Publish(fullSubject, data)
}

// -----------------------------------------------------------------------------

// Connect establishes connection to NATS server and sets up JetStream context if configured.
func (np *NATSPublisher) Connect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc != nil && np.nc.IsConnected() {
		return nil
	}

	if len(np.config.Servers) == 0 {
		return fmt.Errorf("no nats servers configured")
	}

	// All configured servers join the pool; the client fails over between them
	nc, err := nats.Connect(strings.Join(np.config.Servers, ","), np.connectOptions()...)
	if err != nil {
		return fmt.Errorf("nats connection failed: %w", err)
	}

	np.nc = nc
	np.connected = true
	np.logger.Info("%s : successfully connected to NATS at %s", np.name, nc.ConnectedUrl())

	if np.config.JetStream != nil && np.config.JetStream.Enabled {
		np.useJetStream = true
		np.logger.Info("%s : publisher using NATS JetStream for persistent view publishing", np.name)

		np.js, err = nc.JetStream()
		if err != nil {
			np.logger.Error("%s : failed to create JetStream context: %v", np.name, err)
			return fmt.Errorf("jetstream context creation failed: %w", err)
		}

		// Provision the stream up front; a failure here is not fatal because
		// the stream may be managed externally
		if err := np.ensureStreamExists(); err != nil {
			np.logger.Warning("%s : failed to ensure stream exists: %v (continuing anyway)", np.name, err)
		}
	} else {
		np.useJetStream = false
		np.logger.Warning("%s : publisher using NATS Core (fire-and-forget), JetStream is disabled in config", np.name)
	}

	return nil
}

// -----------------------------------------------------------------------------

// connectOptions builds the client options: identity, timeouts, and the event
// handlers keeping the connected flag honest. Handlers fire on their own
// goroutines, hence setConnected.
func (np *NATSPublisher) connectOptions() []nats.Option {
	return []nats.Option{
		nats.Name(np.config.ClientID),
		nats.Timeout(time.Duration(np.config.ConnectTimeoutSeconds) * time.Second),
		nats.ReconnectWait(time.Duration(np.config.ReconnectWaitSeconds) * time.Second),
		nats.MaxReconnects(np.config.MaxReconnects),
		nats.FlusherTimeout(time.Duration(np.config.FlushTimeoutSeconds) * time.Second),
		nats.RetryOnFailedConnect(true),

		nats.ClosedHandler(func(nc *nats.Conn) {
			np.logger.Error("%s : NATS connection closed unexpectedly", np.name)
			np.setConnected(false)
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			np.logger.Warning("%s : NATS disconnected, attempting reconnect: %v", np.name, err)
			np.setConnected(false)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			np.logger.Info("%s : NATS successfully reconnected to %s", np.name, nc.ConnectedUrl())
			np.setConnected(true)
		}),
	}
}

// -----------------------------------------------------------------------------

// ensureStreamExists creates the JetStream stream when it is missing. Subjects
// default to everything under the configured prefix.
func (np *NATSPublisher) ensureStreamExists() error {
	if np.js == nil || np.config.JetStream == nil {
		return fmt.Errorf("jetstream not initialized")
	}

	streamName := np.config.JetStream.StreamName
	if streamName == "" {
		return fmt.Errorf("stream name not configured")
	}

	if info, err := np.js.StreamInfo(streamName); err == nil {
		np.logger.Info("%s : JetStream stream '%s' already exists with %d subjects",
			np.name, streamName, len(info.Config.Subjects))
		return nil
	}

	subjects := np.config.JetStream.Subjects
	if len(subjects) == 0 && np.config.SubjectPrefix != "" {
		subjects = []string{np.config.SubjectPrefix + ".>"}
	}

	maxAge := time.Duration(np.config.JetStream.MaxAgeHours) * time.Hour
	if maxAge == 0 {
		maxAge = 72 * time.Hour
	}

	np.logger.Info("%s : creating JetStream stream '%s'", np.name, streamName)

	_, err := np.js.AddStream(&nats.StreamConfig{
		Name:       streamName,
		Subjects:   subjects,
		Retention:  nats.LimitsPolicy, // Limits retention fits view updates
		Storage:    nats.FileStorage,
		Replicas:   np.config.JetStream.Replicas,
		MaxAge:     maxAge,
		MaxMsgs:    np.config.JetStream.MaxMsgs,
		MaxBytes:   np.config.JetStream.MaxBytes,
		MaxMsgSize: np.config.JetStream.MaxMsgSize,
		Discard:    nats.DiscardOld,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream '%s': %w", streamName, err)
	}

	np.logger.Info("%s : successfully created JetStream stream '%s' with subjects: %v",
		np.name, streamName, subjects)
	return nil
}

// -----------------------------------------------------------------------------

// Disconnect flushes pending messages and closes the NATS connection
func (np *NATSPublisher) Disconnect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc == nil || np.nc.IsClosed() {
		return nil
	}

	// Push out anything still buffered before closing
	if err := np.nc.Flush(); err != nil {
		np.logger.Warning("%s : flush before close failed: %v", np.name, err)
	}

	np.nc.Close()
	np.connected = false
	np.logger.Info("%s : NATS connection closed successfully", np.name)
	return nil
}

// -----------------------------------------------------------------------------

// IsConnected returns connection status
func (np *NATSPublisher) IsConnected() bool {
	np.mu.RLock()
	defer np.mu.RUnlock()
	return np.connected
}

// -----------------------------------------------------------------------------

// GetName returns client identifier
func (np *NATSPublisher) GetName() string {
	return np.name
}

// -----------------------------------------------------------------------------

// Flush waits for all published messages to be acknowledged by the server (for core NATS).
func (np *NATSPublisher) Flush() error {
	if !np.IsConnected() {
		return fmt.Errorf("cannot flush: nats client not connected")
	}
	return np.nc.Flush()
}

// -----------------------------------------------------------------------------

// setConnected updates the connection status from NATS event handlers, which
// fire on their own goroutines.
func (np *NATSPublisher) setConnected(status bool) {
	np.mu.Lock()
	defer np.mu.Unlock()
	np.connected = status
}
