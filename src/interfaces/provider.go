package interfaces

import (
	"stream-observer/src/config"
	"stream-observer/src/logger"
	"stream-observer/src/models"
)

// -----------------------------------------------------------------------------

// ProviderConstructor defines the function signature for creating a new IProvider instance.
type IProviderConstructor func(config *config.Config, logger *logger.Logger, name string) (IProvider, error)

// -----------------------------------------------------------------------------

// Provider defines the core interface for all streaming-contract adapters.
// A provider knows the wire protocol of one contract family: how to build the
// RPC payloads that read stream records and how to decode the responses.
type IProvider interface {
	// GetName return the provider name
	GetName() string

	// GetNetwork return the chain the watched contract lives on (mainnet, sepolia...)
	GetNetwork() string

	// GetEndPoint return the RPC endpoint (for display/logging)
	GetEndPoint() string

	// GetEndpointWithCredentials returns the full endpoint with credentials for connecting
	GetEndpointWithCredentials() string

	// GetStreamIDs return the currently tracked stream IDs
	GetStreamIDs() []string

	// AddStreams starts tracking stream IDs and returns a fetch payload covering them
	AddStreams(streamIDs []string) ([]byte, error)

	// RemoveStreams stops tracking stream IDs
	RemoveStreams(streamIDs []string) ([]byte, error)

	// BuildFetchRequest builds one batched read covering every tracked stream
	BuildFetchRequest() ([]byte, error)

	// BuildSubscribeRequest builds the push-hint subscription (chain heads).
	// Providers may return nil when the transport cannot carry pushes.
	BuildSubscribeRequest() ([]byte, error)

	// ParseMessage processes incoming messages into stream records
	ParseMessage(message []byte) (*models.MParsedMessage, error)
}
