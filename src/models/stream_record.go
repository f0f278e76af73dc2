package models

import (
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// MStreamRecord represents the raw on-chain state of a payment stream as
// returned by the contract. Amounts are integer token base units (uint256 on
// chain), carried as decimals so arbitrarily large balances survive parsing
// without precision loss. Timestamps are unix seconds.
type MStreamRecord struct {
	// Identity Fields
	StreamID string `json:"stream_id"`
	Network  string `json:"network"`
	Token    string `json:"token"`

	// Parties
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`

	// Economic Fields (integer base units)
	Deposit        decimal.Decimal `json:"deposit"`
	RatePerSecond  decimal.Decimal `json:"rate_per_second"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`

	// Schedule Fields (unix seconds)
	StartTime int64 `json:"start_time"`
	StopTime  int64 `json:"stop_time"` // 0 means "derive from deposit and rate"

	// Lifecycle Flags
	PausedTime int64 `json:"paused_time,omitempty"` // Only meaningful when IsPaused
	IsPaused   bool  `json:"is_paused"`
	IsActive   bool  `json:"is_active"`
}

// -----------------------------------------------------------------------------

// MParsedMessage is the outcome of parsing one raw transport frame.
// A frame may carry several stream records (batched RPC responses) or none at
// all (chain-head notifications that only request a refresh of known streams).
type MParsedMessage struct {
	Records          []*MStreamRecord `json:"records,omitempty"`
	RefreshRequested bool             `json:"refresh_requested,omitempty"`
}
