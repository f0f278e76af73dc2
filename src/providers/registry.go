package providers

import (
	"fmt"
	"sync"

	"stream-observer/src/interfaces"
)

// The global registry map. Key is the provider name (e.g., "paystream"), value is the constructor function.
var (
	registry = make(map[string]interfaces.IProviderConstructor)
	mu       sync.RWMutex // Use a mutex for concurrent map access
)

// Register is called by each provider's init() function to add itself to the map.
func Register(name string, constructor interfaces.IProviderConstructor) error {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("provider constructor already registered for name: %s", name)
	}
	registry[name] = constructor
	return nil
}

// GetConstructor is used by the WatcherFactory to retrieve the constructor.
func GetConstructor(name string) (interfaces.IProviderConstructor, error) {
	mu.RLock()
	defer mu.RUnlock()
	constructor, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("unknown provider type: %s", name)
	}
	return constructor, nil
}
