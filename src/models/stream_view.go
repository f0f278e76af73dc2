package models

import (
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// MStreamStatus defines the derived lifecycle state of a stream
type MStreamStatus string

const (
	StreamStatusScheduled MStreamStatus = "SCHEDULED" // Start time is still in the future
	StreamStatusRunning   MStreamStatus = "RUNNING"   // Between start and stop, accruing
	StreamStatusPaused    MStreamStatus = "PAUSED"    // Accrual frozen at the pause timestamp
	StreamStatusFinished  MStreamStatus = "FINISHED"  // Stop time reached, fully vested
	StreamStatusInvalid   MStreamStatus = "INVALID"   // Record failed validation
)

// -----------------------------------------------------------------------------

// MStreamView is the presentation state derived from one MStreamRecord at a
// given observation time. It is recomputed on every refresh and never stored
// durably; the on-chain record stays the single source of truth.
type MStreamView struct {
	// Identity Fields (copied from the record)
	StreamID  string `json:"stream_id"`
	Network   string `json:"network"`
	Token     string `json:"token"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`

	// Derived Fields
	Status             MStreamStatus   `json:"status"`
	ProgressPercent    float64         `json:"progress_percent"`    // 0..100, rounded to 2 decimals
	WithdrawableAmount decimal.Decimal `json:"withdrawable_amount"` // Integer base units, never negative
	EffectiveActive    bool            `json:"effective_active"`    // True only while actually accruing

	// Echoed Economic Fields (integer base units)
	Deposit        decimal.Decimal `json:"deposit"`
	RatePerSecond  decimal.Decimal `json:"rate_per_second"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`

	// Normalized Schedule (StopTime here is always resolved, never 0)
	StartTime int64 `json:"start_time"`
	StopTime  int64 `json:"stop_time"`

	// ComputedAt is the observation timestamp the derivation used (unix seconds)
	ComputedAt int64 `json:"computed_at"`
}
