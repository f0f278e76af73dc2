package interfaces

import "stream-observer/src/models"

// -----------------------------------------------------------------------------

// ViewStore defines the in-memory cache of the latest derived view per stream.
// Views are keyed by (network, stream ID); the store never persists anything.
type IViewStore interface {
	// Upsert stores a view under its watch and returns the replaced view, if any
	Upsert(watchName string, view *models.MStreamView) (*models.MStreamView, bool)

	// Get returns the latest view for one stream
	Get(network string, streamID string) (*models.MStreamView, bool)

	// List returns all views, ordered by network then stream ID
	List() []*models.MStreamView

	// ListByWatch returns the views belonging to one watch, same ordering
	ListByWatch(watchName string) []*models.MStreamView

	// Remove drops the view for one stream
	Remove(network string, streamID string) bool

	// CountByWatch returns how many views a watch currently holds
	CountByWatch(watchName string) int
}
