package watcher_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/projector"
	"stream-observer/src/state"
	"stream-observer/src/watcher"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEpoch = int64(1_700_000_000)

// -----------------------------------------------------------------------------

// fakeProvider implements interfaces.IProvider with canned payloads
type fakeProvider struct {
	mu               sync.Mutex
	network          string
	streamIDs        []string
	fetchPayload     []byte
	subscribePayload []byte
	fetchErr         error
}

func (p *fakeProvider) GetName() string                    { return "fake" }
func (p *fakeProvider) GetNetwork() string                 { return p.network }
func (p *fakeProvider) GetEndPoint() string                { return "http://127.0.0.1:8545" }
func (p *fakeProvider) GetEndpointWithCredentials() string { return "http://127.0.0.1:8545" }

func (p *fakeProvider) GetStreamIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.streamIDs...)
}

func (p *fakeProvider) AddStreams(streamIDs []string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streamIDs = append(p.streamIDs, streamIDs...)
	return p.fetchPayload, nil
}

func (p *fakeProvider) RemoveStreams(streamIDs []string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	remaining := p.streamIDs[:0]
	for _, existing := range p.streamIDs {
		keep := true
		for _, id := range streamIDs {
			if id == existing {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, existing)
		}
	}
	p.streamIDs = remaining
	return nil, nil
}

func (p *fakeProvider) BuildFetchRequest() ([]byte, error)     { return p.fetchPayload, p.fetchErr }
func (p *fakeProvider) BuildSubscribeRequest() ([]byte, error) { return p.subscribePayload, nil }

func (p *fakeProvider) ParseMessage(message []byte) (*models.MParsedMessage, error) {
	return nil, nil
}

// -----------------------------------------------------------------------------

// fakeClient implements interfaces.IConnectionClient and records sent payloads
type fakeClient struct {
	mu        sync.Mutex
	transport string
	running   bool
	sent      [][]byte
	sendErr   error
}

func (c *fakeClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	return nil
}

func (c *fakeClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *fakeClient) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *fakeClient) GetName() string { return "fake" }
func (c *fakeClient) GetType() string { return c.transport }

func (c *fakeClient) SendMessage(message []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, message)
	return nil
}

func (c *fakeClient) ReceiveMessage(ctx context.Context) {}

func (c *fakeClient) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *fakeClient) sentAt(i int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent[i]
}

// -----------------------------------------------------------------------------

// updateRecorder captures the updates a watcher hands downstream
type updateRecorder struct {
	mu      sync.Mutex
	updates []*models.MStreamUpdate
}

func (r *updateRecorder) record(update *models.MStreamUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

func (r *updateRecorder) all() []*models.MStreamUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.MStreamUpdate(nil), r.updates...)
}

// -----------------------------------------------------------------------------

type watcherHarness struct {
	watcher  *watcher.StreamWatcher
	provider *fakeProvider
	client   *fakeClient
	store    *state.ViewStore
	clk      *clock.Mock
	updates  *updateRecorder
}

func newHarness(t *testing.T, transport string) *watcherHarness {
	t.Helper()

	watchConfig := &models.MWatchConfig{
		Name:                "paystream-test",
		Provider:            "paystream",
		Transport:           transport,
		Network:             "sepolia",
		Token:               "USDC",
		ContractAddress:     "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984",
		Endpoint:            "http://127.0.0.1:8545",
		PollIntervalSeconds: 15,
		ConnectionConfig: &models.MConnectionConfig{
			ReconnectAttempts:       1,
			HandshakeTimeoutSeconds: 2,
			MessageBufferSize:       16,
			RequestTimeoutSeconds:   2,
		},
	}

	clk := clock.NewMock()
	clk.Set(time.Unix(testEpoch, 0))

	provider := &fakeProvider{
		network:          "sepolia",
		fetchPayload:     []byte(`{"fetch":true}`),
		subscribePayload: []byte(`{"subscribe":true}`),
	}
	client := &fakeClient{transport: transport}
	store := state.NewViewStore()
	recorder := &updateRecorder{}

	w := watcher.NewStreamWatcher(
		watchConfig,
		logger.NewLogger(nil, "watcher-test"),
		provider,
		client,
		projector.NewProjector(&models.MProjectorConfig{DefaultDurationSeconds: 3600}),
		store,
		clk,
		recorder.record,
	)

	return &watcherHarness{
		watcher:  w,
		provider: provider,
		client:   client,
		store:    store,
		clk:      clk,
		updates:  recorder,
	}
}

// runningRecord is halfway through a 3600-unit stream at testEpoch
func runningRecord(streamID string) *models.MStreamRecord {
	return &models.MStreamRecord{
		StreamID:       streamID,
		Network:        "sepolia",
		Token:          "USDC",
		Sender:         "0x111111",
		Recipient:      "0x222222",
		Deposit:        decimal.NewFromInt(3600),
		RatePerSecond:  decimal.NewFromInt(1),
		TotalWithdrawn: decimal.Zero,
		StartTime:      testEpoch - 1800,
		StopTime:       testEpoch + 1800,
		IsActive:       true,
	}
}

// -----------------------------------------------------------------------------

func TestStreamWatcherStartStopWebSocket(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "websocket")

	require.NoError(t, h.watcher.Start())
	assert.True(t, h.client.IsRunning())
	assert.True(t, h.watcher.Scheduler.IsRunning())

	// Push-hint subscription first, then the initial fetch
	require.Equal(t, 2, h.client.sentCount())
	assert.JSONEq(t, `{"subscribe":true}`, string(h.client.sentAt(0)))
	assert.JSONEq(t, `{"fetch":true}`, string(h.client.sentAt(1)))

	require.NoError(t, h.watcher.Stop())
	assert.False(t, h.client.IsRunning())
	assert.False(t, h.watcher.Scheduler.IsRunning())
}

// -----------------------------------------------------------------------------

func TestStreamWatcherStartHTTPSkipsSubscribe(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "http")

	require.NoError(t, h.watcher.Start())
	defer h.watcher.Stop()

	// No push channel on plain HTTP: only the initial fetch goes out
	require.Equal(t, 1, h.client.sentCount())
	assert.JSONEq(t, `{"fetch":true}`, string(h.client.sentAt(0)))
}

// -----------------------------------------------------------------------------

func TestStreamWatcherProjectsAndPublishes(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "http")

	h.watcher.HandleParsedMessage(&models.MParsedMessage{
		Records: []*models.MStreamRecord{runningRecord("42")},
	})

	updates := h.updates.all()
	require.Len(t, updates, 1)
	assert.Equal(t, models.UpdateTypeInitial, updates[0].Type)
	assert.Equal(t, "paystream-test", updates[0].WatchName)
	assert.Equal(t, models.StreamStatusRunning, updates[0].View.Status)
	assert.InDelta(t, 50.0, updates[0].View.ProgressPercent, 0.001)
	assert.True(t, updates[0].View.EffectiveActive)

	view, ok := h.store.Get("sepolia", "42")
	require.True(t, ok)
	assert.Equal(t, "1800", view.WithdrawableAmount.String())
	assert.Equal(t, testEpoch, view.ComputedAt)
}

// -----------------------------------------------------------------------------

func TestStreamWatcherReportsStatusTransition(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "http")

	h.watcher.HandleParsedMessage(&models.MParsedMessage{
		Records: []*models.MStreamRecord{runningRecord("42")},
	})

	// Same record observed after the stop time: RUNNING becomes FINISHED
	h.clk.Set(time.Unix(testEpoch+1801, 0))
	h.watcher.HandleParsedMessage(&models.MParsedMessage{
		Records: []*models.MStreamRecord{runningRecord("42")},
	})

	updates := h.updates.all()
	require.Len(t, updates, 2)
	assert.Equal(t, models.UpdateTypeUpdate, updates[1].Type)
	assert.Equal(t, models.StreamStatusRunning, updates[1].PreviousStatus)
	assert.Equal(t, models.StreamStatusFinished, updates[1].View.Status)
	assert.InDelta(t, 100.0, updates[1].View.ProgressPercent, 0.001)
	assert.False(t, updates[1].View.EffectiveActive)
}

// -----------------------------------------------------------------------------

func TestStreamWatcherMalformedRecordYieldsNeutralView(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "http")

	record := runningRecord("13")
	record.Deposit = decimal.NewFromInt(-5)

	h.watcher.HandleParsedMessage(&models.MParsedMessage{
		Records: []*models.MStreamRecord{record},
	})

	updates := h.updates.all()
	require.Len(t, updates, 1)
	assert.Equal(t, models.StreamStatusInvalid, updates[0].View.Status)
	assert.False(t, updates[0].View.EffectiveActive)
	assert.True(t, updates[0].View.WithdrawableAmount.IsZero())

	// The neutral view is still visible to readers
	view, ok := h.store.Get("sepolia", "13")
	require.True(t, ok)
	assert.Equal(t, models.StreamStatusInvalid, view.Status)
}

// -----------------------------------------------------------------------------

func TestStreamWatcherRefreshHintTriggersFetch(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "websocket")

	h.watcher.HandleParsedMessage(&models.MParsedMessage{RefreshRequested: true})

	require.Equal(t, 1, h.client.sentCount())
	assert.JSONEq(t, `{"fetch":true}`, string(h.client.sentAt(0)))
}

// -----------------------------------------------------------------------------

func TestStreamWatcherAddStreams(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "http")

	// Client not connected yet: the ID is tracked but nothing is sent
	require.NoError(t, h.watcher.AddStreams([]string{"7"}))
	assert.Equal(t, 0, h.client.sentCount())
	assert.Equal(t, []string{"7"}, h.provider.GetStreamIDs())

	// Connected: the fetch payload goes out immediately
	require.NoError(t, h.client.Connect(context.Background()))
	require.NoError(t, h.watcher.AddStreams([]string{"9"}))
	assert.Equal(t, 1, h.client.sentCount())
	assert.Equal(t, []string{"7", "9"}, h.provider.GetStreamIDs())

	require.NoError(t, h.watcher.AddStreams(nil))
	assert.Equal(t, 1, h.client.sentCount())
}

// -----------------------------------------------------------------------------

func TestStreamWatcherRemoveStreamsDropsViews(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "http")

	require.NoError(t, h.watcher.AddStreams([]string{"7", "9"}))
	h.watcher.HandleParsedMessage(&models.MParsedMessage{
		Records: []*models.MStreamRecord{runningRecord("7"), runningRecord("9")},
	})

	_, ok := h.store.Get("sepolia", "7")
	require.True(t, ok)

	require.NoError(t, h.watcher.RemoveStreams([]string{"7"}))
	assert.Equal(t, []string{"9"}, h.provider.GetStreamIDs())

	_, ok = h.store.Get("sepolia", "7")
	assert.False(t, ok)
	_, ok = h.store.Get("sepolia", "9")
	assert.True(t, ok)
}

// -----------------------------------------------------------------------------

func TestStreamWatcherPollingRefetches(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "http")

	require.NoError(t, h.watcher.Start())
	defer h.watcher.Stop()
	require.Equal(t, 1, h.client.sentCount()) // initial fetch

	h.clk.Add(15 * time.Second)
	require.Eventually(t, func() bool {
		return h.client.sentCount() >= 2
	}, 2*time.Second, 10*time.Millisecond, "poll tick should trigger a refetch")
}

// -----------------------------------------------------------------------------

func TestStreamWatcherResubscribe(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "websocket")

	h.watcher.Resubscribe()

	// Subscription is restored first, then every view refreshed
	require.Equal(t, 2, h.client.sentCount())
	assert.JSONEq(t, `{"subscribe":true}`, string(h.client.sentAt(0)))
	assert.JSONEq(t, `{"fetch":true}`, string(h.client.sentAt(1)))
}

// -----------------------------------------------------------------------------

func TestStreamWatcherGetStatus(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "websocket")
	h.provider.streamIDs = []string{"7", "42"}

	status := h.watcher.GetStatus()
	assert.Equal(t, "paystream-test", status.WatchName)
	assert.False(t, status.Running)
	assert.Equal(t, "paystream", status.Provider)
	assert.Equal(t, "websocket", status.TransportType)
	assert.Equal(t, "sepolia", status.Network)
	assert.Equal(t, []string{"7", "42"}, status.StreamIDs)
	assert.Equal(t, 0, status.ViewCount)

	h.watcher.HandleParsedMessage(&models.MParsedMessage{
		Records: []*models.MStreamRecord{runningRecord("42")},
	})
	assert.Equal(t, 1, h.watcher.GetStatus().ViewCount)
}
