package projector_test

import (
	"errors"
	"math"
	"testing"

	"stream-observer/src/models"
	"stream-observer/src/projector"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// baseRecord is a one-hour stream emitting 1 unit per second
func baseRecord() *models.MStreamRecord {
	return &models.MStreamRecord{
		StreamID:       "42",
		Network:        "mainnet",
		Token:          "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Sender:         "0x3f5CE5FBFe3E9af3971dD833D26bA9b5C936f0bE",
		Recipient:      "0x28C6c06298d514Db089934071355E5743bf21d60",
		Deposit:        decimal.NewFromInt(3600),
		RatePerSecond:  decimal.NewFromInt(1),
		TotalWithdrawn: decimal.Zero,
		StartTime:      1000,
		StopTime:       4600,
		IsActive:       true,
	}
}

// -----------------------------------------------------------------------------

func TestProjectLifecycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		mutate           func(r *models.MStreamRecord)
		now              int64
		wantStatus       models.MStreamStatus
		wantPercent      float64
		wantWithdrawable string
		wantActive       bool
	}{
		{
			name:             "nothing accrued at start time",
			mutate:           func(r *models.MStreamRecord) {},
			now:              1000,
			wantStatus:       models.StreamStatusRunning,
			wantPercent:      0,
			wantWithdrawable: "0",
			wantActive:       true,
		},
		{
			name:             "halfway through the schedule",
			mutate:           func(r *models.MStreamRecord) {},
			now:              2800,
			wantStatus:       models.StreamStatusRunning,
			wantPercent:      50.0,
			wantWithdrawable: "1800",
			wantActive:       true,
		},
		{
			name:             "past the stop time",
			mutate:           func(r *models.MStreamRecord) {},
			now:              5000,
			wantStatus:       models.StreamStatusFinished,
			wantPercent:      100,
			wantWithdrawable: "3600",
			wantActive:       false,
		},
		{
			name: "paused freezes accrual at the pause timestamp",
			mutate: func(r *models.MStreamRecord) {
				r.IsPaused = true
				r.PausedTime = 2000
			},
			now:              1000,
			wantStatus:       models.StreamStatusPaused,
			wantPercent:      27.78,
			wantWithdrawable: "1000",
			wantActive:       false,
		},
		{
			name:             "scheduled before the start time",
			mutate:           func(r *models.MStreamRecord) {},
			now:              500,
			wantStatus:       models.StreamStatusScheduled,
			wantPercent:      0,
			wantWithdrawable: "0",
			wantActive:       false,
		},
		{
			name: "withdrawals reduce the claimable amount",
			mutate: func(r *models.MStreamRecord) {
				r.TotalWithdrawn = decimal.NewFromInt(700)
			},
			now:              2800,
			wantStatus:       models.StreamStatusRunning,
			wantPercent:      50.0,
			wantWithdrawable: "1100",
			wantActive:       true,
		},
		{
			name: "fully withdrawn counts as finished even mid-schedule",
			mutate: func(r *models.MStreamRecord) {
				r.TotalWithdrawn = decimal.NewFromInt(3600)
			},
			now:              2800,
			wantStatus:       models.StreamStatusFinished,
			wantPercent:      100,
			wantWithdrawable: "0",
			wantActive:       false,
		},
		{
			name: "contract-reported inactive beats every other state",
			mutate: func(r *models.MStreamRecord) {
				r.IsActive = false
				r.IsPaused = true
				r.PausedTime = 2000
			},
			now:              2800,
			wantStatus:       models.StreamStatusFinished,
			wantPercent:      100,
			wantWithdrawable: "3600",
			wantActive:       false,
		},
		{
			name: "pause before the start time yields nothing",
			mutate: func(r *models.MStreamRecord) {
				r.IsPaused = true
				r.PausedTime = 800
			},
			now:              2800,
			wantStatus:       models.StreamStatusPaused,
			wantPercent:      0,
			wantWithdrawable: "0",
			wantActive:       false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record := baseRecord()
			tt.mutate(record)

			p := projector.NewProjector(nil)
			view, err := p.Project(record, tt.now)

			require.NoError(t, err)
			require.NotNil(t, view)
			assert.Equal(t, tt.wantStatus, view.Status)
			assert.InDelta(t, tt.wantPercent, view.ProgressPercent, 1e-9)
			assert.Equal(t, tt.wantWithdrawable, view.WithdrawableAmount.String())
			assert.Equal(t, tt.wantActive, view.EffectiveActive)
			assert.Equal(t, tt.now, view.ComputedAt)
		})
	}
}

// -----------------------------------------------------------------------------

func TestProjectNormalizesStopTime(t *testing.T) {
	t.Parallel()

	t.Run("derives stop time from deposit and rate", func(t *testing.T) {
		t.Parallel()

		record := baseRecord()
		record.Deposit = decimal.NewFromInt(100)
		record.RatePerSecond = decimal.NewFromInt(2)
		record.StartTime = 500
		record.StopTime = 0

		p := projector.NewProjector(nil)
		view, err := p.Project(record, 500)

		require.NoError(t, err)
		assert.Equal(t, int64(550), view.StopTime)
		assert.Equal(t, models.StreamStatusRunning, view.Status)
	})

	t.Run("derived stop time bounds the lifecycle", func(t *testing.T) {
		t.Parallel()

		record := baseRecord()
		record.Deposit = decimal.NewFromInt(100)
		record.RatePerSecond = decimal.NewFromInt(2)
		record.StartTime = 500
		record.StopTime = 0

		p := projector.NewProjector(nil)

		view, err := p.Project(record, 549)
		require.NoError(t, err)
		assert.Equal(t, models.StreamStatusRunning, view.Status)

		view, err = p.Project(record, 550)
		require.NoError(t, err)
		assert.Equal(t, models.StreamStatusFinished, view.Status)
	})

	t.Run("stop time at or before start time is recomputed", func(t *testing.T) {
		t.Parallel()

		record := baseRecord()
		record.StopTime = record.StartTime // contract bug: non-increasing schedule

		p := projector.NewProjector(nil)
		view, err := p.Project(record, 1000)

		require.NoError(t, err)
		assert.Equal(t, int64(1000+3600), view.StopTime)
	})

	t.Run("zero rate falls back to the configured duration", func(t *testing.T) {
		t.Parallel()

		record := baseRecord()
		record.RatePerSecond = decimal.Zero
		record.StopTime = 0

		p := projector.NewProjector(&models.MProjectorConfig{DefaultDurationSeconds: 600})
		view, err := p.Project(record, 1000)

		require.NoError(t, err)
		assert.Equal(t, int64(1600), view.StopTime)
	})

	t.Run("oversized derived duration saturates instead of overflowing", func(t *testing.T) {
		t.Parallel()

		huge, err := decimal.NewFromString("115792089237316195423570985008687907853269984665640564039457584007913129639935")
		require.NoError(t, err)

		record := baseRecord()
		record.Deposit = huge
		record.StopTime = 0

		p := projector.NewProjector(nil)
		view, err := p.Project(record, 2000)

		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), view.StopTime)
		assert.Equal(t, models.StreamStatusRunning, view.Status)
	})
}

// -----------------------------------------------------------------------------

func TestProjectMalformedRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record func() *models.MStreamRecord
		now    int64
	}{
		{
			name:   "nil record",
			record: func() *models.MStreamRecord { return nil },
			now:    1000,
		},
		{
			name: "negative deposit",
			record: func() *models.MStreamRecord {
				r := baseRecord()
				r.Deposit = decimal.NewFromInt(-1)
				return r
			},
			now: 1000,
		},
		{
			name: "negative rate",
			record: func() *models.MStreamRecord {
				r := baseRecord()
				r.RatePerSecond = decimal.NewFromInt(-5)
				return r
			},
			now: 1000,
		},
		{
			name: "negative total withdrawn",
			record: func() *models.MStreamRecord {
				r := baseRecord()
				r.TotalWithdrawn = decimal.NewFromInt(-100)
				return r
			},
			now: 1000,
		},
		{
			name: "negative start time",
			record: func() *models.MStreamRecord {
				r := baseRecord()
				r.StartTime = -1
				return r
			},
			now: 1000,
		},
		{
			name: "negative paused time on a paused stream",
			record: func() *models.MStreamRecord {
				r := baseRecord()
				r.IsPaused = true
				r.PausedTime = -7
				return r
			},
			now: 1000,
		},
		{
			name:   "negative observation time",
			record: baseRecord,
			now:    -1,
		},
		{
			name: "deposit smaller than rate derives an empty schedule",
			record: func() *models.MStreamRecord {
				r := baseRecord()
				r.Deposit = decimal.NewFromInt(1)
				r.RatePerSecond = decimal.NewFromInt(2)
				r.StopTime = 0
				return r
			},
			now: 1000,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := projector.NewProjector(nil)
			view, err := p.Project(tt.record(), tt.now)

			require.Error(t, err)
			var malformed *projector.MalformedRecordError
			require.True(t, errors.As(err, &malformed))
			assert.NotEmpty(t, malformed.Reason)

			require.NotNil(t, view)
			assert.Equal(t, models.StreamStatusInvalid, view.Status)
			assert.InDelta(t, 0.0, view.ProgressPercent, 1e-9)
			assert.True(t, view.WithdrawableAmount.IsZero())
			assert.False(t, view.EffectiveActive)
		})
	}
}

// -----------------------------------------------------------------------------

func TestProjectWithdrawableNeverExceedsRemaining(t *testing.T) {
	t.Parallel()

	// A paused stream whose naive accrual (rate * active time) is far above
	// the deposit: the view must still honor deposit - totalWithdrawn.
	record := baseRecord()
	record.Deposit = decimal.NewFromInt(100)
	record.RatePerSecond = decimal.NewFromInt(10)
	record.TotalWithdrawn = decimal.NewFromInt(30)
	record.StartTime = 100
	record.StopTime = 0 // normalized to 110
	record.IsPaused = true
	record.PausedTime = 200

	p := projector.NewProjector(nil)
	view, err := p.Project(record, 105)

	require.NoError(t, err)
	assert.Equal(t, models.StreamStatusPaused, view.Status)
	assert.Equal(t, "70", view.WithdrawableAmount.String())
	assert.InDelta(t, 100.0, view.ProgressPercent, 1e-9)
}

// -----------------------------------------------------------------------------

func TestProjectMonotonicWhileRunning(t *testing.T) {
	t.Parallel()

	record := baseRecord()
	record.RatePerSecond = decimal.NewFromInt(3)
	record.Deposit = decimal.NewFromInt(10800)

	p := projector.NewProjector(nil)

	previous := decimal.NewFromInt(-1)
	previousPercent := -1.0
	for now := record.StartTime; now < record.StopTime; now += 60 {
		view, err := p.Project(record, now)
		require.NoError(t, err)
		require.Equal(t, models.StreamStatusRunning, view.Status)

		assert.True(t, view.WithdrawableAmount.GreaterThanOrEqual(previous),
			"withdrawable regressed at now=%d: %s < %s", now, view.WithdrawableAmount, previous)
		assert.GreaterOrEqual(t, view.ProgressPercent, previousPercent)

		previous = view.WithdrawableAmount
		previousPercent = view.ProgressPercent
	}
}

// -----------------------------------------------------------------------------

func TestProjectIdempotent(t *testing.T) {
	t.Parallel()

	record := baseRecord()
	record.TotalWithdrawn = decimal.NewFromInt(250)

	p := projector.NewProjector(nil)

	first, err := p.Project(record, 3000)
	require.NoError(t, err)
	second, err := p.Project(record, 3000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// -----------------------------------------------------------------------------

func TestProjectZeroStartTimeStaysRunning(t *testing.T) {
	t.Parallel()

	// Contracts report startTime=0 for uninitialized schedules; the time-based
	// finish check is suppressed then, only the inactive flag or a full
	// withdrawal can finish such a stream.
	record := baseRecord()
	record.StartTime = 0
	record.StopTime = 0 // normalized to defaultDuration

	p := projector.NewProjector(nil)
	view, err := p.Project(record, 5000)

	require.NoError(t, err)
	assert.Equal(t, models.StreamStatusRunning, view.Status)
	assert.InDelta(t, 100.0, view.ProgressPercent, 1e-9)
	assert.True(t, view.EffectiveActive)
	assert.Equal(t, "3600", view.WithdrawableAmount.String())
}
