package interfaces

import "stream-observer/src/models"

// -----------------------------------------------------------------------------

// IPublisher defines the interface for publishing derived stream views
type IPublisher interface {
	// OnStreamUpdate processes and publishes a recomputed stream view
	OnStreamUpdate(update *models.MStreamUpdate)

	// Connect establishes the connection to the message bus
	Connect() error

	// Disconnect drains and closes the message bus connection
	Disconnect() error

	// IsConnected returns the current connection status
	IsConnected() bool

	// OnWatcherEvent...
}
