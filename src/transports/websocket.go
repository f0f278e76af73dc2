package transports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/utils"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------

// WebSocketClient implements IConnectionClient using Gorilla WebSocket.
// It carries the push side of an RPC endpoint: subscription frames arrive on
// the connection and are pumped to the raw-data callback. RPC providers drop
// quiet connections, so the client pings on an interval and arms a read
// deadline of twice that interval; a dead endpoint surfaces as a read error
// and enters the reconnect ladder instead of hanging forever.
type WebSocketClient struct {
	conn          *websocket.Conn
	name          string
	config        *models.MWatchConfig
	logger        *logger.Logger
	isRunning     bool
	mu            sync.RWMutex
	recvMsgChann  chan []byte
	errChann      chan error
	done          chan struct{}
	onRawData     func([]byte)
	onReconnected func()
}

// -----------------------------------------------------------------------------

// NewWebSocketClient creates a new WebSocket client. onReconnected is invoked
// after every successful automatic reconnect so the owner can resubscribe;
// it may be nil.
func NewWebSocketClient(config *models.MWatchConfig, logger *logger.Logger, name string, onRawData func([]byte), onReconnected func()) *WebSocketClient {
	return &WebSocketClient{
		name:          name,
		config:        config,
		logger:        logger,
		isRunning:     false,
		recvMsgChann:  make(chan []byte, config.ConnectionConfig.MessageBufferSize),
		errChann:      make(chan error, 10),
		done:          make(chan struct{}),
		onRawData:     onRawData,
		onReconnected: onReconnected,
	}
}

// -----------------------------------------------------------------------------

// Connect establishes WebSocket connection and starts processing
func (w *WebSocketClient) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	conn, _, err := w.dialer().Dial(w.config.Endpoint, nil)
	if err != nil {
		w.logger.Error("%s : failed to connect to %s: %v", w.name, utils.MaskAPIKey(w.config.Endpoint), err)
		return fmt.Errorf("failed to connect to %s: %w", utils.MaskAPIKey(w.config.Endpoint), err)
	}
	w.armConnection(conn)

	// Recreate channels for new connection
	w.recvMsgChann = make(chan []byte, w.config.ConnectionConfig.MessageBufferSize)
	w.errChann = make(chan error, 10)
	w.done = make(chan struct{})

	w.conn = conn
	w.isRunning = true

	w.logger.Info("%s : WebSocket connected to %s", w.name, utils.MaskAPIKey(w.config.Endpoint))

	// Start message processing
	go w.ReceiveMessage(ctx)
	go w.ProcessIncomingMessage(ctx)
	go w.processErrors(ctx)
	go w.keepAlive(ctx, w.done)

	return nil
}

// -----------------------------------------------------------------------------

// Disconnect closes the connection
func (w *WebSocketClient) Disconnect() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return nil
	}

	w.isRunning = false
	close(w.done)

	if w.conn != nil {
		err := w.conn.Close()
		w.conn = nil
		if err != nil {
			return fmt.Errorf("failed to close connection: %s: %w", utils.MaskAPIKey(w.config.Endpoint), err)
		}
	}

	w.logger.Info("%s : WebSocket disconnected from %s", w.name, utils.MaskAPIKey(w.config.Endpoint))
	return nil
}

// -----------------------------------------------------------------------------

// GetName returns the client name
func (w *WebSocketClient) GetName() string {
	return w.name
}

// -----------------------------------------------------------------------------

// GetType returns the transport type
func (w *WebSocketClient) GetType() string {
	return "websocket"
}

// -----------------------------------------------------------------------------

// IsRunning returns the connection status
func (w *WebSocketClient) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isRunning
}

// -----------------------------------------------------------------------------

// SendMessage sends a message to the WebSocket. The write lock serializes
// writers; gorilla permits only one concurrent writer per connection. A write
// deadline keeps a wedged connection from holding the lock indefinitely.
func (w *WebSocketClient) SendMessage(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return fmt.Errorf("connection is nil")
	}

	if timeout := w.config.ConnectionConfig.RequestTimeoutSeconds; timeout > 0 {
		w.conn.SetWriteDeadline(time.Now().Add(time.Duration(timeout) * time.Second))
	}

	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send byte message: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ReceiveMessage pumps frames from the connection into the receive channel.
// Read errors enter the reconnect ladder; the read deadline is pushed forward
// on every frame and every pong, so a silent endpoint eventually errors out
// here rather than blocking a healthy-looking watch.
func (w *WebSocketClient) ReceiveMessage(ctx context.Context) {
	reconnectAttempts := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		running := w.isRunning
		w.mu.RUnlock()
		if !running || conn == nil {
			return
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// Check if we are shutting down
			select {
			case <-w.done:
				return
			default:
			}

			w.errChann <- fmt.Errorf("read message error: %w", err)

			if reconnectAttempts < w.config.ConnectionConfig.ReconnectAttempts {
				reconnectAttempts++
				w.logger.Info("%s : attempting to reconnect (attempt %d/%d)", w.name, reconnectAttempts, w.config.ConnectionConfig.ReconnectAttempts)
				w.attemptReconnect(ctx, reconnectAttempts)
				continue
			}
			return
		}

		// Incoming data proves liveness as well as a pong does
		w.armReadDeadline(conn)

		if messageType != websocket.TextMessage {
			continue
		}

		select {
		case w.recvMsgChann <- message:
			reconnectAttempts = 0
		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

// -----------------------------------------------------------------------------

// ProcessIncomingMessage processes incoming messages from the channel
func (w *WebSocketClient) ProcessIncomingMessage(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case byteMessage, ok := <-w.recvMsgChann:
			if !ok {
				return
			}
			w.onRawData(byteMessage)
		}
	}
}

// -----------------------------------------------------------------------------

// processErrors processes incoming errors from the channel
func (w *WebSocketClient) processErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case err := <-w.errChann:
			w.logger.Error("%s : websocket error: %v", w.name, err)
		}
	}
}

// -----------------------------------------------------------------------------

// keepAlive pings the endpoint on the configured interval. WriteControl is
// safe concurrently with WriteMessage, so no write lock is needed. done is
// captured at spawn because Connect replaces the field per connection.
func (w *WebSocketClient) keepAlive(ctx context.Context, done chan struct{}) {
	interval := w.pingInterval()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			w.mu.RLock()
			conn := w.conn
			w.mu.RUnlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(interval/2)); err != nil {
				w.logger.Debug("%s : ping failed: %v", w.name, err)
			}
		}
	}
}

// -----------------------------------------------------------------------------

// attemptReconnect dials the endpoint again after a read failure. The wait
// grows with the attempt number so a flapping endpoint is not hammered, and
// it runs before the lock is taken so senders are not blocked while waiting.
func (w *WebSocketClient) attemptReconnect(ctx context.Context, attempt int) {
	select {
	case <-ctx.Done():
		return
	case <-w.done:
		return
	case <-time.After(time.Duration(attempt) * time.Second):
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}

	conn, _, err := w.dialer().Dial(w.config.Endpoint, nil)
	if err != nil {
		w.logger.Error("%s : reconnection failed: %v", w.name, err)
		return
	}
	w.armConnection(conn)

	w.conn = conn
	w.logger.Info("%s : successfully reconnected to %s", w.name, utils.MaskAPIKey(w.config.Endpoint))

	// Resubscribe from a fresh goroutine: the callback will want to send on
	// this connection and SendMessage takes the lock we are holding
	if w.onReconnected != nil {
		go w.onReconnected()
	}
}

// -----------------------------------------------------------------------------

// armConnection installs the pong handler and the initial read deadline
func (w *WebSocketClient) armConnection(conn *websocket.Conn) {
	conn.SetPongHandler(func(string) error {
		w.armReadDeadline(conn)
		return nil
	})
	w.armReadDeadline(conn)
}

func (w *WebSocketClient) armReadDeadline(conn *websocket.Conn) {
	if interval := w.pingInterval(); interval > 0 {
		conn.SetReadDeadline(time.Now().Add(2 * interval))
	}
}

func (w *WebSocketClient) pingInterval() time.Duration {
	return time.Duration(w.config.ConnectionConfig.PingIntervalSeconds) * time.Second
}

func (w *WebSocketClient) dialer() *websocket.Dialer {
	return &websocket.Dialer{
		HandshakeTimeout: time.Duration(w.config.ConnectionConfig.HandshakeTimeoutSeconds) * time.Second,
	}
}
