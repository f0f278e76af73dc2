package serializers_test

import (
	"testing"
	"time"

	"stream-observer/src/models"
	"stream-observer/src/serializers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestForFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "proto", "bin", ""} {
		s, err := serializers.ForFormat(format)
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, s)
	}

	_, err := serializers.ForFormat("msgpack")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

// Sequential marshals share a pooled buffer; each returned payload must be a
// private copy that later calls cannot clobber.
func TestBinSerializerCopiesPooledBuffers(t *testing.T) {
	t.Parallel()

	s := serializers.NewBinSerializer()

	first, err := s.Marshal(&models.MWatcherStatus{WatchName: "flow-a"})
	require.NoError(t, err)
	snapshot := string(first)

	_, err = s.Marshal(&models.MWatcherStatus{WatchName: "flow-b-with-a-longer-name"})
	require.NoError(t, err)

	assert.Equal(t, snapshot, string(first), "first payload was clobbered by the second marshal")

	var decoded models.MWatcherStatus
	require.NoError(t, s.Unmarshal(first, &decoded))
	assert.Equal(t, "flow-a", decoded.WatchName)
}

// -----------------------------------------------------------------------------

// The proto serializer bridges through JSON into a protobuf Struct; the round
// trip must keep big integer amounts intact, which is why they travel as
// strings.
func TestProtoSerializerRoundTrip(t *testing.T) {
	t.Parallel()

	deposit, err := decimal.NewFromString("115792089237316195423570985008687907853269984665640564039457")
	require.NoError(t, err)

	update := &models.MStreamUpdate{
		Type:      models.UpdateTypeUpdate,
		WatchName: "paystream-mainnet",
		View: &models.MStreamView{
			StreamID:           "42",
			Network:            "mainnet",
			Status:             models.StreamStatusRunning,
			ProgressPercent:    27.78,
			WithdrawableAmount: decimal.NewFromInt(1000),
			Deposit:            deposit,
			RatePerSecond:      decimal.NewFromInt(1),
			TotalWithdrawn:     decimal.Zero,
			StartTime:          1000,
			StopTime:           4600,
			EffectiveActive:    true,
			ComputedAt:         2000,
		},
		PreviousStatus: models.StreamStatusScheduled,
		Timestamp:      time.Unix(1700000000, 0).UTC(),
	}

	s := serializers.NewProtoSerializer()
	data, err := s.Marshal(update)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var decoded models.MStreamUpdate
	require.NoError(t, s.Unmarshal(data, &decoded))

	assert.Equal(t, update.Type, decoded.Type)
	assert.Equal(t, update.WatchName, decoded.WatchName)
	require.NotNil(t, decoded.View)
	assert.Equal(t, "42", decoded.View.StreamID)
	assert.Equal(t, models.StreamStatusRunning, decoded.View.Status)
	assert.InDelta(t, 27.78, decoded.View.ProgressPercent, 1e-9)
	assert.True(t, decoded.View.Deposit.Equal(deposit), "deposit changed: %s", decoded.View.Deposit)
	assert.Equal(t, "1000", decoded.View.WithdrawableAmount.String())
	assert.True(t, decoded.View.EffectiveActive)
}
