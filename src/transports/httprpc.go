package transports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/utils"
)

// -----------------------------------------------------------------------------

// HTTPRPCClient implements IConnectionClient over plain JSON-RPC POSTs.
// SendMessage posts the payload and feeds the response body through the same
// onRawData callback the websocket transport uses, so providers never learn
// which transport carried their request.
type HTTPRPCClient struct {
	name      string
	config    *models.MWatchConfig
	logger    *logger.Logger
	client    *http.Client
	ctx       context.Context
	isRunning bool
	mu        sync.RWMutex
	onRawData func([]byte)
}

// -----------------------------------------------------------------------------

// NewHTTPRPCClient creates a new HTTP JSON-RPC client
func NewHTTPRPCClient(config *models.MWatchConfig, logger *logger.Logger, name string, onRawData func([]byte)) *HTTPRPCClient {
	return &HTTPRPCClient{
		name:      name,
		config:    config,
		logger:    logger,
		isRunning: false,
		onRawData: onRawData,
	}
}

// -----------------------------------------------------------------------------

// Connect prepares the HTTP client. There is no persistent connection to
// establish; requests are made on demand by SendMessage.
func (h *HTTPRPCClient) Connect(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.client = &http.Client{
		Timeout: time.Duration(h.config.ConnectionConfig.RequestTimeoutSeconds) * time.Second,
	}
	h.ctx = ctx
	h.isRunning = true

	h.logger.Info("%s : HTTP RPC client ready for %s", h.name, utils.MaskAPIKey(h.config.Endpoint))
	return nil
}

// -----------------------------------------------------------------------------

// Disconnect drops idle connections
func (h *HTTPRPCClient) Disconnect() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.isRunning {
		return nil
	}

	h.isRunning = false
	if h.client != nil {
		h.client.CloseIdleConnections()
		h.client = nil
	}

	h.logger.Info("%s : HTTP RPC client closed for %s", h.name, utils.MaskAPIKey(h.config.Endpoint))
	return nil
}

// -----------------------------------------------------------------------------

// GetName returns the client name
func (h *HTTPRPCClient) GetName() string {
	return h.name
}

// -----------------------------------------------------------------------------

// GetType returns the transport type
func (h *HTTPRPCClient) GetType() string {
	return "http"
}

// -----------------------------------------------------------------------------

// IsRunning returns the client status
func (h *HTTPRPCClient) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isRunning
}

// -----------------------------------------------------------------------------

// SendMessage posts the payload to the RPC endpoint and pushes the response
// body through the onRawData callback
func (h *HTTPRPCClient) SendMessage(data []byte) error {
	h.mu.RLock()
	client := h.client
	ctx := h.ctx
	h.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("client is not connected")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.Endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", response.StatusCode, utils.MaskAPIKey(h.config.Endpoint))
	}

	if h.onRawData != nil {
		h.onRawData(body)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ReceiveMessage is a no-op: HTTP responses arrive synchronously inside
// SendMessage, there is nothing to pump
func (h *HTTPRPCClient) ReceiveMessage(ctx context.Context) {
}
