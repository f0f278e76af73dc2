package transports_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/transports"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	log := logger.NewLogger(nil, "test")
	log.SetOutput(io.Discard)
	return log
}

// -----------------------------------------------------------------------------

func watchFor(endpoint string) *models.MWatchConfig {
	return &models.MWatchConfig{
		Name:     "test-watch",
		Endpoint: endpoint,
		ConnectionConfig: &models.MConnectionConfig{
			ReconnectAttempts:       1,
			HandshakeTimeoutSeconds: 5,
			MessageBufferSize:       16,
			RequestTimeoutSeconds:   5,
		},
	}
}

// -----------------------------------------------------------------------------

func TestHTTPRPCClientSendMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"ping":true}`, string(body))
		w.Write([]byte(`{"pong":true}`))
	}))
	defer server.Close()

	received := make(chan []byte, 1)
	client := transports.NewHTTPRPCClient(watchFor(server.URL), testLogger(), "test-watch", func(b []byte) {
		received <- b
	})

	require.NoError(t, client.Connect(context.Background()))
	assert.True(t, client.IsRunning())
	assert.Equal(t, "http", client.GetType())
	assert.Equal(t, "test-watch", client.GetName())

	require.NoError(t, client.SendMessage([]byte(`{"ping":true}`)))

	// The response is delivered synchronously through the callback
	select {
	case body := <-received:
		assert.JSONEq(t, `{"pong":true}`, string(body))
	default:
		t.Fatal("response was not delivered to the callback")
	}

	require.NoError(t, client.Disconnect())
	assert.False(t, client.IsRunning())
	assert.Error(t, client.SendMessage([]byte(`{}`)))
}

// -----------------------------------------------------------------------------

func TestHTTPRPCClientServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	callbacks := 0
	client := transports.NewHTTPRPCClient(watchFor(server.URL), testLogger(), "test-watch", func([]byte) {
		callbacks++
	})

	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect()

	assert.Error(t, client.SendMessage([]byte(`{}`)))
	assert.Zero(t, callbacks, "failed requests must not reach the callback")
}

// -----------------------------------------------------------------------------

func TestWebSocketClientEcho(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, message); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")

	received := make(chan []byte, 1)
	client := transports.NewWebSocketClient(watchFor(endpoint), testLogger(), "test-watch", func(b []byte) {
		received <- b
	}, nil)

	require.NoError(t, client.Connect(context.Background()))
	assert.True(t, client.IsRunning())
	assert.Equal(t, "websocket", client.GetType())

	require.NoError(t, client.SendMessage([]byte(`{"hello":"world"}`)))

	select {
	case message := <-received:
		assert.JSONEq(t, `{"hello":"world"}`, string(message))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the echo")
	}

	require.NoError(t, client.Disconnect())
	assert.False(t, client.IsRunning())
}

// -----------------------------------------------------------------------------

func TestWebSocketClientConnectFailure(t *testing.T) {
	t.Parallel()

	client := transports.NewWebSocketClient(watchFor("ws://127.0.0.1:1"), testLogger(), "test-watch", func([]byte) {}, nil)

	assert.Error(t, client.Connect(context.Background()))
	assert.False(t, client.IsRunning())
}

// -----------------------------------------------------------------------------

// A quiet connection must survive several ping intervals: the pongs the server
// sends back (gorilla's default ping handler) keep extending the read deadline.
func TestWebSocketClientKeepAlive(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Read loop drives control-frame handling; no data is ever sent
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")

	watch := watchFor(endpoint)
	watch.ConnectionConfig.PingIntervalSeconds = 1

	client := transports.NewWebSocketClient(watch, testLogger(), "test-watch", func([]byte) {}, nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect()

	// Idle for longer than the 2x-interval read deadline
	time.Sleep(2500 * time.Millisecond)

	assert.True(t, client.IsRunning())
	require.NoError(t, client.SendMessage([]byte(`{"ping":true}`)))
}
