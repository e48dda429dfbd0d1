package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hackseek/scraper/internal/model"
)

// Runner is the slice of Engine the scheduler drives.
type Runner interface {
	RunAll(ctx context.Context) []model.ScrapeResult
}

// SchedulerState is the scheduler's lifecycle state.
type SchedulerState string

const (
	StateStopped SchedulerState = "stopped"
	StateRunning SchedulerState = "running"
)

// SchedulerOptions tunes cycle timing.
type SchedulerOptions struct {
	// Interval is the sleep between successful cycles. Zero means 6 hours.
	Interval time.Duration
	// Backoff is the sleep after a cycle-level failure. Zero means 1 hour.
	Backoff time.Duration
}

// Scheduler runs full scrape cycles on a fixed interval until stopped.
// A panic escaping a cycle is logged and retried after the backoff
// interval; it never stops the loop or the process. Stop prevents the
// next cycle from starting but does not abort an in-flight one.
type Scheduler struct {
	runner Runner
	opts   SchedulerOptions

	mu      sync.Mutex
	state   SchedulerState
	cancel  context.CancelFunc
	done    chan struct{}
	results []model.ScrapeResult
	lastRun time.Time
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(runner Runner, opts SchedulerOptions) *Scheduler {
	if opts.Interval == 0 {
		opts.Interval = 6 * time.Hour
	}
	if opts.Backoff == 0 {
		opts.Backoff = time.Hour
	}
	return &Scheduler{
		runner: runner,
		opts:   opts,
		state:  StateStopped,
	}
}

// Start launches the background loop. Calling Start while already
// running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.state = StateRunning
	s.cancel = cancel
	s.done = make(chan struct{})
	zap.L().Info("scheduler: starting",
		zap.Duration("interval", s.opts.Interval),
		zap.Duration("backoff", s.opts.Backoff),
	)
	go s.loop(ctx, s.done)
}

// Stop ends the loop. The current cycle, if one is in flight, runs to
// completion; Stop blocks until the loop goroutine exits. Calling Stop
// while already stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateStopped
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	cancel()
	<-done
	zap.L().Info("scheduler: stopped")
}

// State reports the current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastResults returns the results of the most recent completed cycle and
// when it finished.
func (s *Scheduler) LastResults() ([]model.ScrapeResult, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ScrapeResult, len(s.results))
	copy(out, s.results)
	return out, s.lastRun
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		wait := s.opts.Interval
		if err := s.runCycle(ctx); err != nil {
			zap.L().Error("scheduler: cycle failed", zap.Error(err))
			wait = s.opts.Backoff
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// runCycle runs one full cycle, recovering a panic into an error so the
// loop survives and backs off.
func (s *Scheduler) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	// The cycle itself runs on a background context so Stop during a
	// cycle lets it finish; cancellation only skips the next cycle.
	results := s.runner.RunAll(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.results = results
	s.lastRun = time.Now().UTC()
	s.mu.Unlock()
	return nil
}
