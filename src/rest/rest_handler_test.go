package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"stream-observer/src/config"
	"stream-observer/src/grpc_control"
	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/rest"
	"stream-observer/src/watcher"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// silentPublisher keeps the observer broker-free during gateway tests
type silentPublisher struct {
	mu        sync.Mutex
	connected bool
}

func (p *silentPublisher) OnStreamUpdate(update *models.MStreamUpdate) {}

func (p *silentPublisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
	return nil
}

func (p *silentPublisher) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	return nil
}

func (p *silentPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// -----------------------------------------------------------------------------

// restHarness runs the whole chain: HTTP router -> gRPC client -> in-process
// gRPC server -> observer
type restHarness struct {
	router   *mux.Router
	observer *watcher.Observer
}

func newRESTHarness(t *testing.T) *restHarness {
	t.Helper()

	// Reserve a loopback port for the in-process control service
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := &config.Config{
		MConfig: &models.MConfig{
			Name:      "rest-test",
			LogLevel:  "CRITICAL",
			Port:      8080,
			GRPC_Host: "127.0.0.1",
			GRPC_Port: lis.Addr().(*net.TCPAddr).Port,
			Projector: &models.MProjectorConfig{DefaultDurationSeconds: 3600},
			NATS: &models.MNATSConfig{
				Servers:  []string{"nats://127.0.0.1:4222"},
				ClientID: "rest-test",
				Format:   "json",
			},
		},
	}

	appLogger := logger.NewLogger(cfg, "rest-test")
	obs := watcher.NewObserver(cfg, appLogger)
	obs.Publisher = &silentPublisher{}

	server := grpc.NewServer()
	grpc_control.RegisterControlServiceServer(server, grpc_control.NewControlService(cfg, appLogger, obs))
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	handler, err := rest.NewAPIHandler(cfg, appLogger)
	require.NoError(t, err)
	t.Cleanup(func() { handler.Close() })

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	return &restHarness{router: router, observer: obs}
}

// do executes one request against the router and decodes the JSON body
func (h *restHarness) do(t *testing.T, method string, path string, body interface{}, out interface{}) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
	}
	return rec.Code
}

func addWatchBody(name string) *grpc_control.AddWatchRequest {
	return &grpc_control.AddWatchRequest{
		WatchName:       name,
		Provider:        "paystream",
		Transport:       "http",
		Network:         "sepolia",
		Token:           "DAI",
		ContractAddress: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984",
		Endpoint:        "http://127.0.0.1:9",
		StreamIDs:       []string{"1"},
	}
}

// -----------------------------------------------------------------------------

func TestRESTHealth(t *testing.T) {
	t.Parallel()
	h := newRESTHarness(t)

	var resp grpc_control.HealthCheckResponse
	code := h.do(t, http.MethodGet, "/rest/health", nil, &resp)

	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Healthy)
	assert.Equal(t, "StreamObserver", resp.Details["observer_name"])
}

// -----------------------------------------------------------------------------

func TestRESTWatcherLifecycle(t *testing.T) {
	t.Parallel()
	h := newRESTHarness(t)

	var added grpc_control.ControlResponse
	code := h.do(t, http.MethodPost, "/rest/watchers", addWatchBody("flow-rest"), &added)
	require.Equal(t, http.StatusOK, code)
	require.True(t, added.Success, added.Message)

	// The registered watch reports its configuration
	var status grpc_control.WatcherStatusResponse
	code = h.do(t, http.MethodGet, "/rest/watchers/flow-rest", nil, &status)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "flow-rest", status.WatchName)
	assert.Equal(t, "paystream", status.Provider)
	assert.False(t, status.Running)

	// Unknown watches are a 404
	code = h.do(t, http.MethodGet, "/rest/watchers/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Stopped watches only appear with ?all=true
	var listed grpc_control.ListWatchersResponse
	code = h.do(t, http.MethodGet, "/rest/watchers?all=true", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int32(1), listed.TotalAvailable)
	assert.Equal(t, "flow-rest", listed.AvailableWatchers[0].WatchName)

	// Stopping a watch that never started is a conflict
	var stopped grpc_control.ControlResponse
	code = h.do(t, http.MethodPost, "/rest/watchers/flow-rest/stop", nil, &stopped)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "WATCH_ALREADY_STOPPED", stopped.ErrorCode)

	// Removing drops it entirely
	var removed grpc_control.ControlResponse
	code = h.do(t, http.MethodDelete, "/rest/watchers/flow-rest", nil, &removed)
	require.Equal(t, http.StatusOK, code)
	require.True(t, removed.Success, removed.Message)

	code = h.do(t, http.MethodGet, "/rest/watchers/flow-rest", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// -----------------------------------------------------------------------------

func TestRESTAddWatchBadBody(t *testing.T) {
	t.Parallel()
	h := newRESTHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/rest/watchers", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// -----------------------------------------------------------------------------

func TestRESTStreamRoutes(t *testing.T) {
	t.Parallel()
	h := newRESTHarness(t)

	var added grpc_control.ControlResponse
	code := h.do(t, http.MethodPost, "/rest/watchers", addWatchBody("flow-streams"), &added)
	require.Equal(t, http.StatusOK, code)
	require.True(t, added.Success, added.Message)

	var resp grpc_control.ControlResponse
	code = h.do(t, http.MethodPost, "/rest/watchers/flow-streams/streams",
		&grpc_control.AddStreamsRequest{StreamIDs: []string{"7", "8"}}, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, resp.Message, "2 stream(s)")

	code = h.do(t, http.MethodDelete, "/rest/watchers/flow-streams/streams",
		&grpc_control.RemoveStreamsRequest{StreamIDs: []string{"7"}}, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success, resp.Message)

	// The path segment wins even if the body names another watch
	code = h.do(t, http.MethodPost, "/rest/watchers/ghost/streams",
		&grpc_control.AddStreamsRequest{WatchName: "flow-streams", StreamIDs: []string{"9"}}, &resp)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "WATCH_NOT_FOUND", resp.ErrorCode)
}

// -----------------------------------------------------------------------------

func TestRESTViews(t *testing.T) {
	t.Parallel()
	h := newRESTHarness(t)

	h.observer.Store.Upsert("flow-views", &models.MStreamView{
		StreamID:           "42",
		Network:            "sepolia",
		Token:              "DAI",
		Status:             models.StreamStatusRunning,
		ProgressPercent:    25,
		WithdrawableAmount: decimal.NewFromInt(900),
		EffectiveActive:    true,
		Deposit:            decimal.NewFromInt(3600),
		RatePerSecond:      decimal.NewFromInt(1),
		TotalWithdrawn:     decimal.Zero,
		StartTime:          1_700_000_000,
		StopTime:           1_700_003_600,
		ComputedAt:         1_700_000_900,
	})

	var listed grpc_control.ListViewsResponse
	code := h.do(t, http.MethodGet, "/rest/views", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int32(1), listed.Total)

	var view grpc_control.ViewMessage
	code = h.do(t, http.MethodGet, "/rest/views/sepolia/42", nil, &view)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "RUNNING", view.Status)
	assert.Equal(t, "900", view.WithdrawableAmount)
	assert.True(t, view.EffectiveActive)

	code = h.do(t, http.MethodGet, "/rest/views/sepolia/404", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// -----------------------------------------------------------------------------

func TestRESTRefreshAll(t *testing.T) {
	t.Parallel()
	h := newRESTHarness(t)

	var resp grpc_control.ControlResponse
	code := h.do(t, http.MethodPost, "/rest/refresh", nil, &resp)

	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Refresh triggered for all watches", resp.Message)
}

// -----------------------------------------------------------------------------

func TestRESTServiceLifecycleWiring(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		MConfig: &models.MConfig{
			Name:      "rest-test",
			LogLevel:  "CRITICAL",
			Port:      18080,
			GRPC_Host: "127.0.0.1",
			GRPC_Port: 15051,
			NATS: &models.MNATSConfig{
				Servers:  []string{"nats://127.0.0.1:4222"},
				ClientID: "rest-test",
				Format:   "json",
			},
		},
	}

	svc, err := rest.NewRESTService(cfg, logger.NewLogger(cfg, "rest-test"))
	require.NoError(t, err)
	assert.False(t, svc.IsRunning())
	require.NoError(t, svc.Stop(contextForTest(t)))
}

func contextForTest(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
