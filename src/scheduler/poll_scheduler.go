package scheduler

import (
	"fmt"
	"sync"
	"time"

	"stream-observer/src/logger"

	"github.com/benbjohnson/clock"
)

// -----------------------------------------------------------------------------

// PollScheduler invokes a task at a fixed interval until stopped. The clock is
// injectable so tests can drive ticks without waiting wall-clock time.
type PollScheduler struct {
	name     string
	interval time.Duration
	clk      clock.Clock
	task     func()
	logger   *logger.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// -----------------------------------------------------------------------------

// NewPollScheduler creates a scheduler for the task. A nil clk falls back to
// the wall clock.
func NewPollScheduler(name string, interval time.Duration, clk clock.Clock, logger *logger.Logger, task func()) *PollScheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &PollScheduler{
		name:     name,
		interval: interval,
		clk:      clk,
		task:     task,
		logger:   logger,
	}
}

// -----------------------------------------------------------------------------

// Start begins ticking. The ticker is created before the goroutine launches
// so a mocked clock advanced right after Start still lands the first tick.
func (s *PollScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler '%s' is already running", s.name)
	}

	s.running = true
	s.done = make(chan struct{})
	ticker := s.clk.Ticker(s.interval)

	s.logger.Debug("%s : poll scheduler started (interval %s)", s.name, s.interval)

	s.wg.Add(1)
	go s.run(ticker)

	return nil
}

// -----------------------------------------------------------------------------

func (s *PollScheduler) run(ticker *clock.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.task()
		}
	}
}

// -----------------------------------------------------------------------------

// Stop halts ticking and waits for an in-flight task to finish
func (s *PollScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Debug("%s : poll scheduler stopped", s.name)
}

// -----------------------------------------------------------------------------

// IsRunning returns the scheduler status
func (s *PollScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
