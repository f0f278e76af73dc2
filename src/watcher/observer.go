package watcher

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stream-observer/src/config"
	"stream-observer/src/factories"
	"stream-observer/src/interfaces"
	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/projector"
	"stream-observer/src/publishers"
	"stream-observer/src/serializers"
	"stream-observer/src/state"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-multierror"
)

// -----------------------------------------------------------------------------
// Core Application and Configuration Structs
// -----------------------------------------------------------------------------

// Observer supervises every configured watch flow and owns the shared
// projection pipeline: projector, view store and publisher.
type Observer struct {
	Name   string
	Config *config.Config
	Logger *logger.Logger
	// Publisher routes recomputed views to the message bus
	Publisher interfaces.IPublisher
	// Factory dependency to create Provider and Connection clients
	Factory *factories.WatcherFactory
	// Projection pipeline shared by every watcher
	Projector *projector.Projector
	Store     interfaces.IViewStore
	// Running watch flow instances, keyed by watch name
	Watchers map[string]interfaces.IStreamWatcher
	clk      clock.Clock
	mu       sync.RWMutex
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// -----------------------------------------------------------------------------

// NewObserver creates a new Observer instance
func NewObserver(config *config.Config, logger *logger.Logger) *Observer {
	ctx, cancel := context.WithCancel(context.Background())

	// serializer choice follows the configured wire format
	serializer, err := serializers.ForFormat(config.NATS.Format)
	if err != nil {
		logger.Warning("StreamObserver : %v, falling back to json", err)
		serializer = serializers.NewJSONSerializer()
	}

	// create the nats publisher that handles and pushes view updates
	publisher := publishers.NewNATSPublisher(config.NATS, logger, serializer)

	observer := &Observer{
		Name:   "StreamObserver",
		Config: config,
		Logger: logger,

		// Publisher, route and send views to the publisher (NATS...)
		Publisher: publisher,

		Projector: projector.NewProjector(config.Projector),
		Store:     state.NewViewStore(),

		Watchers: make(map[string]interfaces.IStreamWatcher),
		clk:      clock.New(),
		ctx:      ctx,
		cancel:   cancel,
	}

	// The factory routes parsed frames and reconnect events back through the
	// observer so they reach the watcher owning the connection
	observer.Factory = factories.NewWatcherFactory(config, logger, observer.handleParsedMessage, observer.handleReconnect)

	return observer
}

// -----------------------------------------------------------------------------
// Public Lifecycle Methods (All Watches)
// -----------------------------------------------------------------------------

// Start brings up the publisher and every configured watch flow
func (so *Observer) Start() error {
	so.Logger.Info("%s : starting stream observer", so.Name)

	// 1. Connect to publisher first - fail fast if publisher unavailable
	so.Logger.Info("%s : connecting to publisher", so.Name)
	if err := so.Publisher.Connect(); err != nil {
		return fmt.Errorf("failed to connect to publisher: %w", err)
	}
	so.Logger.Info("%s : publisher connected successfully", so.Name)

	// 2. Create all watchers using the factory
	if err := so.createAllWatchers(); err != nil {
		return fmt.Errorf("failed to create all watchers: %w", err)
	}

	// 3. Start all connections concurrently
	so.startAllWatchers()

	so.Logger.Info("observer started successfully, monitoring %d watches.", len(so.Watchers))
	return nil
}

// -----------------------------------------------------------------------------

// Stop gracefully shuts down the observer and all watch flows
func (so *Observer) Stop() error {
	so.Logger.Info("%s : stopping watchers", so.Name)

	var errs *multierror.Error

	// Call stop on all watchers
	so.mu.RLock()
	for _, w := range so.Watchers {
		if err := w.Stop(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	so.mu.RUnlock()

	// Signal goroutines to exit (if they check the context)
	so.cancel()

	// Wait for all connection goroutines to finish
	so.wg.Wait()

	// Disconnect publisher after all watchers have stopped
	so.Logger.Info("%s : disconnecting publisher", so.Name)
	if err := so.Publisher.Disconnect(); err != nil {
		so.Logger.Error("%s : failed to disconnect publisher: %v", so.Name, err)
		errs = multierror.Append(errs, err)
	}

	so.Logger.Info("%s : stream observer stopped", so.Name)
	return errs.ErrorOrNil()
}

// -----------------------------------------------------------------------------
// Dynamic Watch Management Methods
// -----------------------------------------------------------------------------

// StartWatcher starts a single, named watch flow synchronously.
func (so *Observer) StartWatcher(watchName string) error {
	so.mu.RLock()
	w, ok := so.Watchers[watchName]
	so.mu.RUnlock()

	if !ok {
		return fmt.Errorf("watch '%s' not found", watchName)
	}

	so.Logger.Info("%s : starting StreamWatcher for %s", so.Name, watchName)
	if err := w.Start(); err != nil {
		so.Logger.Error("%s : watcher %s startup error: %v", so.Name, watchName, err)
		return err
	}

	so.Logger.Info("%s : watch '%s' started successfully", so.Name, watchName)
	return nil
}

// -----------------------------------------------------------------------------

// StopWatcher stops a single, named watch flow.
func (so *Observer) StopWatcher(watchName string) error {
	so.mu.RLock()
	w, ok := so.Watchers[watchName]
	so.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%s : watch '%s' not found", so.Name, watchName)
	}

	so.Logger.Info("%s : stopping watcher for %s", so.Name, watchName)
	return w.Stop()
}

// -----------------------------------------------------------------------------

// AddWatch validates a new watch configuration, registers it and creates the
// watcher. The new flow stays idle until started.
func (so *Observer) AddWatch(watchConfig *models.MWatchConfig) error {
	if watchConfig == nil {
		return fmt.Errorf("cannot add watch: missing configuration")
	}

	so.Logger.Info("%s : attempting to add new watch: %s", so.Name, watchConfig.Name)

	if err := config.ValidateWatch(watchConfig); err != nil {
		return fmt.Errorf("invalid watch configuration for '%s': %w", watchConfig.Name, err)
	}
	config.ApplyWatchDefaults(watchConfig)

	so.mu.RLock()
	_, exists := so.Watchers[watchConfig.Name]
	so.mu.RUnlock()

	if exists {
		return fmt.Errorf("watch '%s' is already registered", watchConfig.Name)
	}

	// The provider constructor resolves its own sub-config by name, so the
	// watch has to be present in the configuration before creation
	appended := false
	if so.Config.GetWatchByName(watchConfig.Name) == nil {
		so.Config.Watches = append(so.Config.Watches, watchConfig)
		appended = true
	}

	w, err := so.createWatcher(watchConfig.Name)
	if err != nil {
		if appended {
			so.removeWatchConfig(watchConfig.Name)
		}
		return fmt.Errorf("failed to create provider/connection for %s: %w", watchConfig.Name, err)
	}

	so.mu.Lock()
	so.Watchers[watchConfig.Name] = w
	so.mu.Unlock()

	so.Logger.Info("%s : watch '%s' successfully added, ready to be started", so.Name, watchConfig.Name)
	return nil
}

// -----------------------------------------------------------------------------

// RemoveWatch stops a watch flow if needed, then removes it together with the
// views it produced.
func (so *Observer) RemoveWatch(watchName string) error {
	so.mu.RLock()
	w, exists := so.Watchers[watchName]
	so.mu.RUnlock()

	if !exists {
		return fmt.Errorf("watch '%s' not found for deletion", watchName)
	}

	if w.GetStatus().Running {
		w.Stop()
	}

	// Drop the cached views owned by this watch
	for _, view := range so.Store.ListByWatch(watchName) {
		so.Store.Remove(view.Network, view.StreamID)
	}

	so.mu.Lock()
	delete(so.Watchers, watchName)
	so.mu.Unlock()

	so.removeWatchConfig(watchName)

	so.Logger.Info("%s : watch '%s' successfully deleted from management map", so.Name, watchName)
	return nil
}

// -----------------------------------------------------------------------------

func (so *Observer) ListWatchers() []string {
	var names []string

	so.mu.RLock()
	for name := range so.Watchers {
		names = append(names, name)
	}
	so.mu.RUnlock()

	sort.Strings(names)
	return names
}

// -----------------------------------------------------------------------------

// RefreshAllWatchers concurrently triggers an immediate refetch on every
// watch flow.
func (so *Observer) RefreshAllWatchers() error {
	so.mu.RLock()
	watchers := make(map[string]interfaces.IStreamWatcher, len(so.Watchers))
	for k, v := range so.Watchers {
		watchers[k] = v
	}
	so.mu.RUnlock()

	so.Logger.Info("%s : refreshing all %d watchers", so.Name, len(watchers))

	var wg sync.WaitGroup
	errCh := make(chan error, len(watchers))

	for name, w := range watchers {
		wg.Add(1)
		go func(n string, sw interfaces.IStreamWatcher) {
			defer wg.Done()
			if err := sw.RefreshNow(); err != nil {
				errCh <- fmt.Errorf("failed to refresh watcher %s: %w", n, err)
			}
		}(name, w)
	}

	wg.Wait()
	close(errCh)

	var errs *multierror.Error
	for err := range errCh {
		errs = multierror.Append(errs, err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		so.Logger.Error("%s : refresh request failed for one or more watchers", so.Name)
		return fmt.Errorf("stream refresh failed: %w", err)
	}

	so.Logger.Info("%s : refresh request sent successfully to all watchers", so.Name)
	return nil
}

// -----------------------------------------------------------------------------

// RefreshWatcher triggers an immediate refetch on a single watch flow.
func (so *Observer) RefreshWatcher(watchName string) error {
	so.mu.RLock()
	w, ok := so.Watchers[watchName]
	so.mu.RUnlock()

	if !ok {
		return fmt.Errorf("watch '%s' not found", watchName)
	}

	so.Logger.Info("%s : refreshing watcher: %s", so.Name, watchName)
	return w.RefreshNow()
}

// -----------------------------------------------------------------------------
// Stream Management Methods
// -----------------------------------------------------------------------------

// AddStreamsToWatch starts tracking additional stream IDs on a single watch.
func (so *Observer) AddStreamsToWatch(watchName string, streamIDs []string) error {
	so.mu.RLock()
	w, ok := so.Watchers[watchName]
	so.mu.RUnlock()

	if !ok {
		return fmt.Errorf("watch '%s' not found", watchName)
	}

	so.Logger.Info("%s : adding streams %v to watch: %s", so.Name, streamIDs, watchName)
	return w.AddStreams(streamIDs)
}

// -----------------------------------------------------------------------------

// RemoveStreamsFromWatch stops tracking stream IDs on a single watch.
func (so *Observer) RemoveStreamsFromWatch(watchName string, streamIDs []string) error {
	so.mu.RLock()
	w, ok := so.Watchers[watchName]
	so.mu.RUnlock()

	if !ok {
		return fmt.Errorf("watch '%s' not found", watchName)
	}

	so.Logger.Info("%s : removing streams %v from watch: %s", so.Name, streamIDs, watchName)
	return w.RemoveStreams(streamIDs)
}

// -----------------------------------------------------------------------------
// Status and View Accessor Methods
// -----------------------------------------------------------------------------

// GetWatcherStatus returns the current status information for a single watch flow.
func (so *Observer) GetWatcherStatus(watchName string) (*models.MWatcherStatus, error) {
	so.mu.RLock()
	w, ok := so.Watchers[watchName]
	so.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("watch '%s' not found in observer map", watchName)
	}

	status := w.GetStatus()
	return status, nil
}

// -----------------------------------------------------------------------------

// GetView returns the latest derived view for one stream
func (so *Observer) GetView(network string, streamID string) (*models.MStreamView, bool) {
	return so.Store.Get(network, streamID)
}

// -----------------------------------------------------------------------------

// ListViews returns every cached view across all watches
func (so *Observer) ListViews() []*models.MStreamView {
	return so.Store.List()
}

// -----------------------------------------------------------------------------

// ListViewsByWatch returns the cached views owned by one watch
func (so *Observer) ListViewsByWatch(watchName string) []*models.MStreamView {
	return so.Store.ListByWatch(watchName)
}

// -----------------------------------------------------------------------------
// Private/Helper Methods
// -----------------------------------------------------------------------------

// createWatcher assembles one watch flow from its configuration: provider and
// connection from the factory, projection pipeline from the observer.
func (so *Observer) createWatcher(watchName string) (interfaces.IStreamWatcher, error) {
	watchConfig := so.Config.GetWatchByName(watchName)
	if watchConfig == nil {
		return nil, fmt.Errorf("no configuration found for watch '%s'", watchName)
	}

	provider, connection, err := so.Factory.CreateProviderWithConnection(watchName)
	if err != nil {
		return nil, err
	}

	return NewStreamWatcher(
		watchConfig,
		so.Logger,
		provider,
		connection,
		so.Projector,
		so.Store,
		so.clk,
		so.Publisher.OnStreamUpdate,
	), nil
}

// -----------------------------------------------------------------------------

// createAllWatchers initializes every watch flow declared in the config.
func (so *Observer) createAllWatchers() error {
	so.Watchers = make(map[string]interfaces.IStreamWatcher)

	if len(so.Config.Watches) == 0 {
		so.Logger.Warning("%s : no watches configured, waiting for control plane additions", so.Name)
		return nil
	}

	for _, watchConfig := range so.Config.Watches {
		watchName := watchConfig.Name
		w, err := so.createWatcher(watchName)
		if err != nil {
			so.Logger.Error("%s : skipping watch %s: failed to create provider/connection: %v", so.Name, watchName, err)
			continue
		}

		so.Watchers[watchName] = w
	}

	if len(so.Watchers) == 0 {
		return fmt.Errorf("no valid watches were initialized from configuration")
	}

	return nil
}

// -----------------------------------------------------------------------------

// startAllWatchers starts all registered watch flows concurrently
func (so *Observer) startAllWatchers() {
	so.mu.RLock()
	defer so.mu.RUnlock()
	for name, w := range so.Watchers {
		so.wg.Add(1)
		go func(n string, sw interfaces.IStreamWatcher) {
			defer so.wg.Done()
			so.Logger.Info("%s : starting StreamWatcher for %s", so.Name, n)
			if err := sw.Start(); err != nil {
				so.Logger.Error("%s : watcher %s startup error: %v", so.Name, n, err)
			}
			// Note: Start() returns once the connection client is running. The
			// actual data flow happens internally via the IConnectionClient.
		}(name, w)
	}
}

// -----------------------------------------------------------------------------

// handleParsedMessage routes one parsed transport frame to the watcher that
// owns the connection it arrived on
func (so *Observer) handleParsedMessage(watchName string, parsed *models.MParsedMessage) {
	so.mu.RLock()
	w, ok := so.Watchers[watchName]
	so.mu.RUnlock()

	if !ok {
		so.Logger.Debug("%s : dropping message for unknown watch '%s'", so.Name, watchName)
		return
	}

	w.HandleParsedMessage(parsed)
}

// -----------------------------------------------------------------------------

// handleReconnect restores subscriptions after a transport-level reconnect
func (so *Observer) handleReconnect(watchName string) {
	so.mu.RLock()
	w, ok := so.Watchers[watchName]
	so.mu.RUnlock()

	if !ok {
		return
	}

	so.Logger.Info("%s : transport for '%s' reconnected, restoring subscriptions", so.Name, watchName)
	w.Resubscribe()
}

// -----------------------------------------------------------------------------

// removeWatchConfig drops a watch entry from the shared configuration
func (so *Observer) removeWatchConfig(watchName string) {
	filtered := so.Config.Watches[:0]
	for _, wc := range so.Config.Watches {
		if wc.Name != watchName {
			filtered = append(filtered, wc)
		}
	}
	so.Config.Watches = filtered
}
