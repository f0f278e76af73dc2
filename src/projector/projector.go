package projector

import (
	"fmt"
	"math"

	"stream-observer/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// defaultDurationFallback bounds zero-rate streams when no projector config
// is supplied. The application config applies the same default.
const defaultDurationFallback = 3600

// -----------------------------------------------------------------------------

// MalformedRecordError reports a stream record that failed validation. The
// projector still returns a neutral view in that case, so callers can log the
// error and keep going.
type MalformedRecordError struct {
	StreamID string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed stream record '%s': %s", e.StreamID, e.Reason)
}

// -----------------------------------------------------------------------------

// Projector derives a presentation view from a raw on-chain stream record and
// an observation timestamp. It is a pure computation: no I/O, no clock access,
// no shared state, so concurrent use needs no locking.
type Projector struct {
	defaultDuration int64
}

// -----------------------------------------------------------------------------

// NewProjector creates a projector with the configured fallback duration for
// streams whose stop time cannot be derived
func NewProjector(cfg *models.MProjectorConfig) *Projector {
	duration := int64(defaultDurationFallback)
	if cfg != nil && cfg.DefaultDurationSeconds > 0 {
		duration = cfg.DefaultDurationSeconds
	}
	return &Projector{defaultDuration: duration}
}

// -----------------------------------------------------------------------------

// Project derives the view for one record at the given unix time.
//
// On a malformed record it never panics: it returns a neutral INVALID view
// together with a *MalformedRecordError describing what was wrong.
func (p *Projector) Project(record *models.MStreamRecord, now int64) (*models.MStreamView, error) {
	if reason := validate(record, now); reason != "" {
		return neutralView(record, now), &MalformedRecordError{StreamID: recordID(record), Reason: reason}
	}

	startTime := record.StartTime
	stopTime := p.normalizeStopTime(record)
	if stopTime <= startTime {
		return neutralView(record, now), &MalformedRecordError{
			StreamID: record.StreamID,
			Reason:   fmt.Sprintf("stream duration is not positive after normalization (start=%d stop=%d)", startTime, stopTime),
		}
	}
	totalDuration := stopTime - startTime

	view := &models.MStreamView{
		StreamID:       record.StreamID,
		Network:        record.Network,
		Token:          record.Token,
		Sender:         record.Sender,
		Recipient:      record.Recipient,
		Deposit:        record.Deposit,
		RatePerSecond:  record.RatePerSecond,
		TotalWithdrawn: record.TotalWithdrawn,
		StartTime:      startTime,
		StopTime:       stopTime,
		ComputedAt:     now,
	}

	remaining := decimal.Max(decimal.Zero, record.Deposit.Sub(record.TotalWithdrawn))

	var percent float64
	var withdrawable decimal.Decimal

	// Classification is mutually exclusive, evaluated in priority order
	switch {
	case !record.IsActive ||
		(now >= stopTime && startTime > 0) ||
		record.TotalWithdrawn.GreaterThanOrEqual(record.Deposit):
		view.Status = models.StreamStatusFinished
		percent = 100
		withdrawable = remaining

	case record.IsPaused:
		view.Status = models.StreamStatusPaused
		activeTime := record.PausedTime - startTime
		if activeTime < 0 {
			activeTime = 0
		}
		if activeTime > 0 {
			percent = float64(activeTime) / float64(totalDuration) * 100
		}
		accrued := record.RatePerSecond.Mul(decimal.NewFromInt(activeTime))
		withdrawable = decimal.Max(decimal.Zero, accrued.Sub(record.TotalWithdrawn))

	case now < startTime:
		view.Status = models.StreamStatusScheduled
		percent = 0
		withdrawable = decimal.Zero

	default:
		view.Status = models.StreamStatusRunning
		elapsed := now - startTime
		percent = float64(elapsed) / float64(totalDuration) * 100
		accrued := decimal.Min(record.RatePerSecond.Mul(decimal.NewFromInt(elapsed)), record.Deposit)
		withdrawable = decimal.Max(decimal.Zero, accrued.Sub(record.TotalWithdrawn))
	}

	// Final clamps: percent to [0,100], withdrawable to the remaining balance
	view.ProgressPercent = roundPercent(clampPercent(percent))
	view.WithdrawableAmount = decimal.Min(withdrawable, remaining)
	view.EffectiveActive = view.Status == models.StreamStatusRunning

	return view, nil
}

// -----------------------------------------------------------------------------

// normalizeStopTime resolves unreliable stop times. A zero or non-increasing
// stop time is recomputed from the deposit and the emission rate, falling back
// to the configured default duration for zero-rate streams.
func (p *Projector) normalizeStopTime(record *models.MStreamRecord) int64 {
	if record.StopTime != 0 && record.StopTime > record.StartTime {
		return record.StopTime
	}

	duration := p.defaultDuration
	if !record.RatePerSecond.IsZero() {
		quotient, _ := record.Deposit.QuoRem(record.RatePerSecond, 0)
		big := quotient.BigInt()
		if big.IsInt64() {
			duration = big.Int64()
		} else {
			duration = math.MaxInt64
		}
	}

	return addClamped(record.StartTime, duration)
}

// -----------------------------------------------------------------------------

// validate returns a non-empty reason when the record or observation time
// violates the input contract
func validate(record *models.MStreamRecord, now int64) string {
	if record == nil {
		return "record is nil"
	}
	if record.Deposit.IsNegative() {
		return "negative deposit"
	}
	if record.RatePerSecond.IsNegative() {
		return "negative rate per second"
	}
	if record.TotalWithdrawn.IsNegative() {
		return "negative total withdrawn"
	}
	if record.StartTime < 0 {
		return "negative start time"
	}
	if record.StopTime < 0 {
		return "negative stop time"
	}
	if record.IsPaused && record.PausedTime < 0 {
		return "negative paused time"
	}
	if now < 0 {
		return "negative observation time"
	}
	return ""
}

// -----------------------------------------------------------------------------

// neutralView builds the zeroed view returned alongside a malformed record
// error. Identity fields are echoed when available so the caller can still
// tell which stream went bad.
func neutralView(record *models.MStreamRecord, now int64) *models.MStreamView {
	view := &models.MStreamView{
		Status:             models.StreamStatusInvalid,
		WithdrawableAmount: decimal.Zero,
		ComputedAt:         now,
	}
	if record != nil {
		view.StreamID = record.StreamID
		view.Network = record.Network
		view.Token = record.Token
		view.Sender = record.Sender
		view.Recipient = record.Recipient
	}
	return view
}

// -----------------------------------------------------------------------------

func recordID(record *models.MStreamRecord) string {
	if record == nil {
		return ""
	}
	return record.StreamID
}

// -----------------------------------------------------------------------------

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// -----------------------------------------------------------------------------

// roundPercent keeps two decimal places, enough for display without
// suggesting precision the second-granularity inputs do not have
func roundPercent(p float64) float64 {
	return math.Round(p*100) / 100
}

// -----------------------------------------------------------------------------

func addClamped(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}
