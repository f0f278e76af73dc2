package interfaces

import "stream-observer/src/models"

// -----------------------------------------------------------------------------

// StreamWatcher defines the interface for managing a single contract watch
type IStreamWatcher interface {
	GetName() string
	Start() error
	Stop() error
	AddStreams(streamIDs []string) error
	RemoveStreams(streamIDs []string) error
	RefreshNow() error
	Resubscribe()
	HandleParsedMessage(parsed *models.MParsedMessage)
	GetStatus() *models.MWatcherStatus
}
