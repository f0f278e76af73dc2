package models

// -----------------------------------------------------------------------------

// MWatcherStatus represents the runtime status and technical metadata of one
// contract watch. It aggregates information from the underlying provider and
// connection client.

type MWatcherStatus struct {
	WatchName     string   // The name of the watch
	Running       bool     // From IConnectionClient.IsRunning()
	Provider      string   // e.g., "paystream" (from IProvider.GetName())
	TransportType string   // e.g., "websocket", "http" (from IConnectionClient.GetType())
	Network       string   // e.g., "mainnet", "sepolia"
	Endpoint      string   // RPC endpoint (credentials masked before display)
	StreamIDs     []string // Stream IDs currently tracked by this watch
	ViewCount     int      // Number of views currently held for this watch
}
