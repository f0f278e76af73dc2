package models

import (
	"time"
)

// -----------------------------------------------------------------------------

// MUpdateType distinguishes the first view computed for a stream from
// subsequent recomputations
type MUpdateType string

const (
	UpdateTypeInitial MUpdateType = "INITIAL" // First view for this stream ID
	UpdateTypeUpdate  MUpdateType = "UPDATE"  // Recomputed view for a known stream
)

// -----------------------------------------------------------------------------

// MStreamUpdate is the message published downstream whenever a stream view is
// recomputed. PreviousStatus lets consumers detect lifecycle transitions
// (RUNNING -> FINISHED etc.) without keeping their own history.
type MStreamUpdate struct {
	Type           MUpdateType   `json:"type"`
	WatchName      string        `json:"watch_name"`
	View           *MStreamView  `json:"view"`
	PreviousStatus MStreamStatus `json:"previous_status,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}
