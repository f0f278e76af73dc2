package watcher

import (
	"context"
	"fmt"
	"time"

	"stream-observer/src/interfaces"
	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/projector"
	"stream-observer/src/scheduler"

	"github.com/benbjohnson/clock"
)

// -----------------------------------------------------------------------------
// Core Application and Configuration Structs
// -----------------------------------------------------------------------------

// StreamWatcher holds the provider and connection client for a single watch
// flow, plus the projection pipeline turning fetched records into views.
type StreamWatcher struct {
	Name      string
	Config    *models.MWatchConfig
	Logger    *logger.Logger
	Provider  interfaces.IProvider
	Client    interfaces.IConnectionClient
	Projector *projector.Projector
	Store     interfaces.IViewStore
	Scheduler *scheduler.PollScheduler
	// OnUpdate receives every recomputed view for downstream distribution
	OnUpdate func(*models.MStreamUpdate)
	clk      clock.Clock
}

// -----------------------------------------------------------------------------

// NewStreamWatcher assembles a watcher around an already-created provider and
// connection client. A nil clk falls back to the wall clock.
func NewStreamWatcher(
	watchConfig *models.MWatchConfig,
	appLogger *logger.Logger,
	provider interfaces.IProvider,
	client interfaces.IConnectionClient,
	proj *projector.Projector,
	store interfaces.IViewStore,
	clk clock.Clock,
	onUpdate func(*models.MStreamUpdate),
) *StreamWatcher {
	if clk == nil {
		clk = clock.New()
	}

	w := &StreamWatcher{
		Name:      watchConfig.Name,
		Config:    watchConfig,
		Logger:    appLogger,
		Provider:  provider,
		Client:    client,
		Projector: proj,
		Store:     store,
		OnUpdate:  onUpdate,
		clk:       clk,
	}

	w.Scheduler = scheduler.NewPollScheduler(
		w.Name,
		time.Duration(watchConfig.PollIntervalSeconds)*time.Second,
		clk,
		appLogger,
		w.pollOnce,
	)

	return w
}

// -----------------------------------------------------------------------------
// Lifecycle Methods
// -----------------------------------------------------------------------------

// GetName returns the watch name
func (w *StreamWatcher) GetName() string {
	return w.Name
}

// -----------------------------------------------------------------------------

// Start initiates the connection client, subscribes to push hints where the
// transport can carry them, performs the initial fetch and begins polling.
func (w *StreamWatcher) Start() error {
	w.Logger.Info("%s : starting connection client for provider", w.Name)
	if err := w.Client.Connect(context.Background()); err != nil {
		return fmt.Errorf("failed to start client %s: %w", w.Name, err)
	}

	if w.Client.GetType() == "websocket" {
		if err := w.subscribePushHints(); err != nil {
			w.Logger.Warning("%s : push hints unavailable, relying on polling: %v", w.Name, err)
		}
	}

	// First fetch right away; a failure here is not fatal, the next poll retries
	if err := w.RefreshNow(); err != nil {
		w.Logger.Warning("%s : initial fetch failed: %v", w.Name, err)
	}

	if err := w.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start poll scheduler for %s: %w", w.Name, err)
	}

	w.Logger.Info("%s : connection client started", w.Name)
	return nil
}

// -----------------------------------------------------------------------------

// Stop halts polling and closes the connection client.
func (w *StreamWatcher) Stop() error {
	w.Logger.Info("%s : stopping connection client for provider", w.Name)
	w.Scheduler.Stop()
	return w.Client.Disconnect()
}

// -----------------------------------------------------------------------------
// Stream Management Methods
// -----------------------------------------------------------------------------

// AddStreams starts tracking stream IDs. When the client is connected the
// fetch payload returned by the provider is sent immediately, so new streams
// get their first view without waiting for the next poll.
func (w *StreamWatcher) AddStreams(streamIDs []string) error {
	if len(streamIDs) == 0 {
		return nil // Nothing to add
	}

	fetchMsg, err := w.Provider.AddStreams(streamIDs)
	if err != nil {
		return fmt.Errorf("failed to add streams to %s: %w", w.Name, err)
	}

	if fetchMsg != nil && w.Client.IsRunning() {
		if err := w.Client.SendMessage(fetchMsg); err != nil {
			return fmt.Errorf("failed to send fetch message for %s: %w", w.Name, err)
		}
	}

	w.Logger.Info("%s : successfully added %d streams", w.Name, len(streamIDs))
	return nil
}

// -----------------------------------------------------------------------------

// RemoveStreams stops tracking stream IDs and drops their cached views.
func (w *StreamWatcher) RemoveStreams(streamIDs []string) error {
	if len(streamIDs) == 0 {
		return nil // Nothing to remove
	}

	if _, err := w.Provider.RemoveStreams(streamIDs); err != nil {
		return fmt.Errorf("failed to remove streams from %s: %w", w.Name, err)
	}

	network := w.Provider.GetNetwork()
	for _, streamID := range streamIDs {
		w.Store.Remove(network, streamID)
	}

	w.Logger.Info("%s : successfully removed %d streams", w.Name, len(streamIDs))
	return nil
}

// -----------------------------------------------------------------------------

// RefreshNow fetches every tracked stream immediately
func (w *StreamWatcher) RefreshNow() error {
	fetchMsg, err := w.Provider.BuildFetchRequest()
	if err != nil {
		return fmt.Errorf("failed to build fetch request for %s: %w", w.Name, err)
	}
	if fetchMsg == nil {
		return nil // Nothing tracked yet
	}

	if err := w.Client.SendMessage(fetchMsg); err != nil {
		return fmt.Errorf("failed to send fetch message for %s: %w", w.Name, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Resubscribe restores push hints and refreshes all views; invoked by the
// transport after an automatic reconnect.
func (w *StreamWatcher) Resubscribe() {
	if w.Client.GetType() == "websocket" {
		if err := w.subscribePushHints(); err != nil {
			w.Logger.Warning("%s : resubscribe failed: %v", w.Name, err)
		}
	}
	if err := w.RefreshNow(); err != nil {
		w.Logger.Error("%s : refresh after reconnect failed: %v", w.Name, err)
	}
}

// -----------------------------------------------------------------------------
// Message Handling
// -----------------------------------------------------------------------------

// HandleParsedMessage consumes the outcome of one parsed transport frame:
// recomputes views for delivered records and honors refresh hints.
func (w *StreamWatcher) HandleParsedMessage(parsed *models.MParsedMessage) {
	if parsed == nil {
		return
	}

	if parsed.RefreshRequested {
		w.Logger.Debug("%s : chain head advanced, refreshing tracked streams", w.Name)
		if err := w.RefreshNow(); err != nil {
			w.Logger.Error("%s : refresh failed: %v", w.Name, err)
		}
	}

	for _, record := range parsed.Records {
		w.processRecord(record)
	}
}

// -----------------------------------------------------------------------------

// processRecord projects one record at the current time, stores the view and
// hands the update downstream. Malformed records still produce a neutral
// view; the diagnostic only gets logged.
func (w *StreamWatcher) processRecord(record *models.MStreamRecord) {
	now := w.clk.Now()

	view, err := w.Projector.Project(record, now.Unix())
	if err != nil {
		w.Logger.Warning("%s : %v", w.Name, err)
	}
	if view == nil {
		return
	}

	previous, existed := w.Store.Upsert(w.Name, view)

	update := &models.MStreamUpdate{
		Type:      models.UpdateTypeInitial,
		WatchName: w.Name,
		View:      view,
		Timestamp: now,
	}
	if existed {
		update.Type = models.UpdateTypeUpdate
		update.PreviousStatus = previous.Status

		if previous.Status != view.Status {
			w.Logger.Info("%s : stream %s/%s transitioned %s -> %s",
				w.Name, view.Network, view.StreamID, previous.Status, view.Status)
		}
	}

	if w.OnUpdate != nil {
		w.OnUpdate(update)
	}
}

// -----------------------------------------------------------------------------
// Status Methods
// -----------------------------------------------------------------------------

func (w *StreamWatcher) GetStatus() *models.MWatcherStatus {
	return &models.MWatcherStatus{
		WatchName:     w.Name,                     // The watch identity
		Running:       w.Client.IsRunning(),       // <-- From IConnectionClient
		Provider:      w.Config.Provider,          // <-- From the watch config
		TransportType: w.Client.GetType(),         // <-- From IConnectionClient
		Network:       w.Provider.GetNetwork(),    // <-- From IProvider
		Endpoint:      w.Provider.GetEndPoint(),   // <-- From IProvider
		StreamIDs:     w.Provider.GetStreamIDs(),  // <-- From IProvider
		ViewCount:     w.Store.CountByWatch(w.Name),
	}
}

// -----------------------------------------------------------------------------
// Private/Helper Methods
// -----------------------------------------------------------------------------

// pollOnce is the scheduled task: skip while disconnected, otherwise refetch
func (w *StreamWatcher) pollOnce() {
	if !w.Client.IsRunning() {
		w.Logger.Debug("%s : skipping poll, client not running", w.Name)
		return
	}
	if err := w.RefreshNow(); err != nil {
		w.Logger.Error("%s : poll failed: %v", w.Name, err)
	}
}

// -----------------------------------------------------------------------------

func (w *StreamWatcher) subscribePushHints() error {
	subMsg, err := w.Provider.BuildSubscribeRequest()
	if err != nil {
		return err
	}
	if subMsg == nil {
		return nil
	}
	if err := w.Client.SendMessage(subMsg); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}
	w.Logger.Info("%s : subscribed to chain-head push hints", w.Name)
	return nil
}
