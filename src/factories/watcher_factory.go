package factories

import (
	"fmt"

	"stream-observer/src/config"
	"stream-observer/src/interfaces"
	"stream-observer/src/logger"
	"stream-observer/src/models"
	"stream-observer/src/providers"
	"stream-observer/src/transports"
)

// -----------------------------------------------------------------------------

// Factory creates provider instances based on configuration
type WatcherFactory struct {
	Name   string
	Config *config.Config
	Logger *logger.Logger
	// The final callback function for routing parsed frames to their watcher
	OnParsedCallback func(watchName string, parsed *models.MParsedMessage)
	// Invoked when a transport reconnects, so subscriptions can be restored
	OnReconnectedCallback func(watchName string)
}

// -----------------------------------------------------------------------------

// NewWatcherFactory creates a new WatcherFactory instance
func NewWatcherFactory(
	config *config.Config,
	logger *logger.Logger,
	onParsed func(watchName string, parsed *models.MParsedMessage),
	onReconnected func(watchName string),
) *WatcherFactory {
	return &WatcherFactory{
		Name:                  "WatcherFactory",
		Config:                config,
		Logger:                logger,
		OnParsedCallback:      onParsed,
		OnReconnectedCallback: onReconnected,
	}
}

// -----------------------------------------------------------------------------

// CreateProvider creates a provider instance for a watch using the dynamic registry.
func (wf *WatcherFactory) CreateProvider(watchName string) (interfaces.IProvider, error) {
	watchConfig := wf.Config.GetWatchByName(watchName)
	if watchConfig == nil {
		return nil, fmt.Errorf("watch %s not found in config", watchName)
	}

	// Dynamically fetch the constructor from the provider package registry
	constructor, err := providers.GetConstructor(watchConfig.Provider)
	if err != nil {
		return nil, err // Returns "unknown provider type: ..." error
	}

	newProvider, err := constructor(wf.Config, wf.Logger, watchName)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider for %s: %w", watchName, err)
	}

	wf.Logger.Info("%s : successfully created provider %s for network %s",
		wf.Name,
		watchConfig.Provider,
		newProvider.GetNetwork(),
	)

	return newProvider, nil
}

// -----------------------------------------------------------------------------

// CreateConnectionClient creates a connection client wired to an existing
// provider. Providers track stream IDs, so the client must share the same
// instance instead of creating a fresh one.
func (wf *WatcherFactory) CreateConnectionClient(watchName string, provider interfaces.IProvider) (interfaces.IConnectionClient, error) {
	watchConfig := wf.Config.GetWatchByName(watchName)
	if watchConfig == nil {
		return nil, fmt.Errorf("watch %s not found in config", watchName)
	}

	// 1. Override the endpoint with the provider's connection endpoint (includes credentials)
	watchConfig.Endpoint = provider.GetEndpointWithCredentials()

	// 2. Define the onRawData callback closure for the transport client.
	onRawData := func(message []byte) {
		// The transport pushes raw frames up; the provider understands the
		// wire protocol, so parsing happens here before routing.
		parsed, err := provider.ParseMessage(message)
		if err != nil {
			wf.Logger.Error("%s : failed to parse message for %s: %v (raw: %s)", wf.Name, watchName, err, string(message))
			return
		}

		// Route the parsed outcome to the owning watcher if anything came out
		if parsed != nil && wf.OnParsedCallback != nil {
			wf.OnParsedCallback(watchName, parsed)
		}
	}

	// 3. Reconnect notifications travel the same route so the owning watcher
	// can restore its subscription state
	onReconnected := func() {
		if wf.OnReconnectedCallback != nil {
			wf.OnReconnectedCallback(watchName)
		}
	}

	// 4. Create the appropriate connection client based on transport type
	switch watchConfig.Transport {
	case "websocket":
		return transports.NewWebSocketClient(
			watchConfig,
			wf.Logger,
			watchName,
			onRawData, // Pass the closure that handles parsing and routing
			onReconnected,
		), nil
	case "http":
		return transports.NewHTTPRPCClient(
			watchConfig,
			wf.Logger,
			watchName,
			onRawData,
		), nil
	// FIXME implement transports if needed...
	// case "ipc":
	//     return transports.NewIPCClient(watchConfig, wf.Logger, watchName, onRawData), nil
	default:
		// Raise an error if the connection type is not explicitly supported.
		return nil, fmt.Errorf("unsupported connection type '%s' for watch %s", watchConfig.Transport, watchName)
	}
}

// -----------------------------------------------------------------------------

// CreateProviderWithConnection creates both provider and connection client
func (wf *WatcherFactory) CreateProviderWithConnection(watchName string) (interfaces.IProvider, interfaces.IConnectionClient, error) {
	provider, err := wf.CreateProvider(watchName)
	if err != nil {
		return nil, nil, err
	}

	connection, err := wf.CreateConnectionClient(watchName, provider)
	if err != nil {
		return nil, nil, err
	}

	return provider, connection, nil
}
