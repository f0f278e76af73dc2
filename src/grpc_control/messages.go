package grpc_control

import (
	"stream-observer/src/models"
)

// -----------------------------------------------------------------------------
// Wire messages for the control service. These travel through the JSON codec
// registered in codec.go, so plain structs with json tags are the schema.
// -----------------------------------------------------------------------------

// ControlResponse is the generic acknowledgement for mutating calls
type ControlResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	ErrorCode string `json:"error_code,omitempty"`
}

// -----------------------------------------------------------------------------
// Watch Management
// -----------------------------------------------------------------------------

// WatcherInfo is the summary of one watch flow
type WatcherInfo struct {
	WatchName     string   `json:"watch_name"`
	Provider      string   `json:"provider"`
	TransportType string   `json:"transport_type"`
	Network       string   `json:"network"`
	Endpoint      string   `json:"endpoint"` // Credentials are masked
	Running       bool     `json:"running"`
	StreamIDs     []string `json:"stream_ids"`
	ViewCount     int32    `json:"view_count"`
	Status        string   `json:"status"`
}

type ListWatchersRequest struct {
	IncludeStopped bool `json:"include_stopped"`
}

type ListWatchersResponse struct {
	RunningWatchers   []*WatcherInfo `json:"running_watchers"`
	AvailableWatchers []*WatcherInfo `json:"available_watchers,omitempty"`
	TotalRunning      int32          `json:"total_running"`
	TotalAvailable    int32          `json:"total_available"`
	Timestamp         int64          `json:"timestamp"`
}

type GetWatcherStatusRequest struct {
	WatchName string `json:"watch_name"`
}

type WatcherStatusResponse struct {
	WatchName     string   `json:"watch_name"`
	Running       bool     `json:"running"`
	Provider      string   `json:"provider"`
	TransportType string   `json:"transport_type"`
	Network       string   `json:"network"`
	Endpoint      string   `json:"endpoint"` // Credentials are masked
	StreamIDs     []string `json:"stream_ids"`
	ViewCount     int32    `json:"view_count"`
	StatusMessage string   `json:"status_message"`
}

// AddWatchRequest carries a full watch configuration
type AddWatchRequest struct {
	WatchName           string   `json:"watch_name"`
	Provider            string   `json:"provider"`
	Transport           string   `json:"transport"`
	Network             string   `json:"network"`
	Token               string   `json:"token"`
	ContractAddress     string   `json:"contract_address"`
	Endpoint            string   `json:"endpoint"`
	ApiKey              string   `json:"api_key,omitempty"`
	StreamIDs           []string `json:"stream_ids,omitempty"`
	PollIntervalSeconds int      `json:"poll_interval_seconds,omitempty"`
}

type RemoveWatchRequest struct {
	WatchName string `json:"watch_name"`
}

type StartWatchRequest struct {
	WatchName string `json:"watch_name"`
}

type StopWatchRequest struct {
	WatchName string `json:"watch_name"`
}

// -----------------------------------------------------------------------------
// Stream Management
// -----------------------------------------------------------------------------

type AddStreamsRequest struct {
	WatchName string   `json:"watch_name"`
	StreamIDs []string `json:"stream_ids"`
}

type RemoveStreamsRequest struct {
	WatchName string   `json:"watch_name"`
	StreamIDs []string `json:"stream_ids"`
}

// RefreshStreamsRequest targets one watch, or every watch when the name is empty
type RefreshStreamsRequest struct {
	WatchName string `json:"watch_name,omitempty"`
}

// -----------------------------------------------------------------------------
// View Queries
// -----------------------------------------------------------------------------

// ViewMessage mirrors models.MStreamView with amounts rendered as strings, so
// consumers never lose precision on large token balances
type ViewMessage struct {
	StreamID           string  `json:"stream_id"`
	Network            string  `json:"network"`
	Token              string  `json:"token"`
	Sender             string  `json:"sender"`
	Recipient          string  `json:"recipient"`
	Status             string  `json:"status"`
	ProgressPercent    float64 `json:"progress_percent"`
	WithdrawableAmount string  `json:"withdrawable_amount"`
	EffectiveActive    bool    `json:"effective_active"`
	Deposit            string  `json:"deposit"`
	RatePerSecond      string  `json:"rate_per_second"`
	TotalWithdrawn     string  `json:"total_withdrawn"`
	StartTime          int64   `json:"start_time"`
	StopTime           int64   `json:"stop_time"`
	ComputedAt         int64   `json:"computed_at"`
}

type ListViewsRequest struct {
	// WatchName filters to one watch when set
	WatchName string `json:"watch_name,omitempty"`
}

type ListViewsResponse struct {
	Views     []*ViewMessage `json:"views"`
	Total     int32          `json:"total"`
	Timestamp int64          `json:"timestamp"`
}

type GetViewRequest struct {
	Network  string `json:"network"`
	StreamID string `json:"stream_id"`
}

type GetViewResponse struct {
	Found bool         `json:"found"`
	View  *ViewMessage `json:"view,omitempty"`
}

// -----------------------------------------------------------------------------
// Health Check
// -----------------------------------------------------------------------------

type HealthCheckRequest struct {
	ServiceName string `json:"service_name,omitempty"`
}

type HealthCheckResponse struct {
	Healthy   bool              `json:"healthy"`
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// -----------------------------------------------------------------------------

// viewMessageFrom converts an internal view into its wire shape
func viewMessageFrom(view *models.MStreamView) *ViewMessage {
	return &ViewMessage{
		StreamID:           view.StreamID,
		Network:            view.Network,
		Token:              view.Token,
		Sender:             view.Sender,
		Recipient:          view.Recipient,
		Status:             string(view.Status),
		ProgressPercent:    view.ProgressPercent,
		WithdrawableAmount: view.WithdrawableAmount.String(),
		EffectiveActive:    view.EffectiveActive,
		Deposit:            view.Deposit.String(),
		RatePerSecond:      view.RatePerSecond.String(),
		TotalWithdrawn:     view.TotalWithdrawn.String(),
		StartTime:          view.StartTime,
		StopTime:           view.StopTime,
		ComputedAt:         view.ComputedAt,
	}
}
