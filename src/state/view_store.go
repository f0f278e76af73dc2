package state

import (
	"sort"
	"sync"

	"stream-observer/src/models"
)

// -----------------------------------------------------------------------------

type entry struct {
	watchName string
	view      *models.MStreamView
}

// -----------------------------------------------------------------------------

// ViewStore keeps the latest derived view per stream, keyed by network and
// stream ID. Purely in-memory: a restart simply refetches the records and the
// views rebuild themselves.
type ViewStore struct {
	mu    sync.RWMutex
	views map[string]*entry
}

// -----------------------------------------------------------------------------

// NewViewStore creates an empty store
func NewViewStore() *ViewStore {
	return &ViewStore{
		views: make(map[string]*entry),
	}
}

// -----------------------------------------------------------------------------

func key(network string, streamID string) string {
	return network + "/" + streamID
}

// -----------------------------------------------------------------------------

// Upsert stores a view under its watch and returns the replaced view, if any.
// Views are treated as immutable once stored.
func (s *ViewStore) Upsert(watchName string, view *models.MStreamView) (*models.MStreamView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(view.Network, view.StreamID)
	previous, existed := s.views[k]
	s.views[k] = &entry{watchName: watchName, view: view}

	if existed {
		return previous.view, true
	}
	return nil, false
}

// -----------------------------------------------------------------------------

// Get returns the latest view for one stream
func (s *ViewStore) Get(network string, streamID string) (*models.MStreamView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.views[key(network, streamID)]
	if !ok {
		return nil, false
	}
	return e.view, true
}

// -----------------------------------------------------------------------------

// List returns all views, ordered by network then stream ID
func (s *ViewStore) List() []*models.MStreamView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(*entry) bool { return true })
}

// -----------------------------------------------------------------------------

// ListByWatch returns the views belonging to one watch, same ordering
func (s *ViewStore) ListByWatch(watchName string) []*models.MStreamView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(e *entry) bool { return e.watchName == watchName })
}

// -----------------------------------------------------------------------------

// collect gathers matching views sorted by key; callers must hold the lock
func (s *ViewStore) collect(match func(*entry) bool) []*models.MStreamView {
	keys := make([]string, 0, len(s.views))
	for k, e := range s.views {
		if match(e) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := make([]*models.MStreamView, 0, len(keys))
	for _, k := range keys {
		result = append(result, s.views[k].view)
	}
	return result
}

// -----------------------------------------------------------------------------

// Remove drops the view for one stream
func (s *ViewStore) Remove(network string, streamID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(network, streamID)
	if _, ok := s.views[k]; !ok {
		return false
	}
	delete(s.views, k)
	return true
}

// -----------------------------------------------------------------------------

// CountByWatch returns how many views a watch currently holds
func (s *ViewStore) CountByWatch(watchName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.views {
		if e.watchName == watchName {
			count++
		}
	}
	return count
}
