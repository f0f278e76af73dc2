package scheduler_test

import (
	"io"
	"testing"
	"time"

	"stream-observer/src/logger"
	"stream-observer/src/scheduler"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	log := logger.NewLogger(nil, "test")
	log.SetOutput(io.Discard)
	return log
}

// -----------------------------------------------------------------------------

func TestPollSchedulerTicks(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	ticks := make(chan struct{}, 16)

	s := scheduler.NewPollScheduler("test", 15*time.Second, mock, testLogger(), func() {
		ticks <- struct{}{}
	})

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	defer s.Stop()

	for i := 0; i < 3; i++ {
		mock.Add(15 * time.Second)
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never fired", i+1)
		}
	}
}

// -----------------------------------------------------------------------------

func TestPollSchedulerDoubleStart(t *testing.T) {
	t.Parallel()

	s := scheduler.NewPollScheduler("test", time.Minute, clock.NewMock(), testLogger(), func() {})

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.Start())
}

// -----------------------------------------------------------------------------

func TestPollSchedulerStop(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	ticks := make(chan struct{}, 16)

	s := scheduler.NewPollScheduler("test", 10*time.Second, mock, testLogger(), func() {
		ticks <- struct{}{}
	})

	require.NoError(t, s.Start())
	s.Stop()
	assert.False(t, s.IsRunning())

	// Stopping twice is harmless
	s.Stop()

	// A stopped scheduler must not run the task anymore
	mock.Add(time.Minute)
	select {
	case <-ticks:
		t.Fatal("task ran after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}
