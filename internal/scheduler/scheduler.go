// Package scheduler runs periodic single-flight refreshes on one background
// goroutine.
package scheduler

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/hotctl/internal/logger"
)

// MinInterval is the shortest accepted refresh interval.
const MinInterval = time.Second

// State of a Scheduler.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// RefreshFunc performs one refresh. It is never called concurrently.
type RefreshFunc func(ctx context.Context)

type job struct {
	completion func()
}

// Scheduler serialises refreshes. A refresh requested while another is in
// flight completes immediately without doing any work.
type Scheduler struct {
	refresh  RefreshFunc
	interval func() time.Duration
	log      logger.Logger
	ctx      context.Context

	mu        sync.Mutex
	running   bool
	stopped   bool
	refreshes uint64
	skipped   uint64
	onStop    []func()

	jobs chan job
	quit chan struct{}
	done chan struct{}
}

// New starts the background goroutine. interval is consulted before every
// tick so changes take effect without a restart.
func New(refresh RefreshFunc, interval func() time.Duration, log logger.Logger) *Scheduler {
	s := &Scheduler{
		refresh:  refresh,
		interval: interval,
		log:      log.With("scheduler"),
		ctx:      context.Background(),
		jobs:     make(chan job, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go s.worker()

	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.stopped:
		return Stopped
	case s.running:
		return Running
	default:
		return Idle
	}
}

// Trigger requests one refresh. completion is called exactly once: after
// the refresh, or immediately when a refresh is already running or the
// scheduler is stopped.
func (s *Scheduler) Trigger(completion func()) {
	if completion == nil {
		completion = func() {}
	}

	s.mu.Lock()
	if s.running || s.stopped {
		s.skipped++
		s.mu.Unlock()
		s.log.Debug().Msg("Refresh in flight, skipping")
		completion()
		return
	}

	s.running = true
	s.jobs <- job{completion: completion}
	s.mu.Unlock()
}

// Stop prevents further refreshes. done runs once no refresh is in flight:
// immediately when idle, otherwise after the running refresh's completion.
// Stop may be called more than once.
func (s *Scheduler) Stop(done func()) {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.quit)
	}

	if s.running {
		if done != nil {
			s.onStop = append(s.onStop, done)
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if done != nil {
		done()
	}
}

// Wait blocks until Stop was called and the background goroutine exited.
func (s *Scheduler) Wait() {
	<-s.done
}

// Stats returns the number of refreshes performed and requests skipped.
func (s *Scheduler) Stats() (refreshes, skipped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshes, s.skipped
}

// Run triggers a refresh immediately and then on every interval until ctx
// is done or Stop is called. completion is passed to every Trigger.
func (s *Scheduler) Run(ctx context.Context, completion func()) {
	interval := s.nextInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Trigger(completion)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-ticker.C:
			if next := s.nextInterval(); next != interval {
				s.log.Debug().Dur("interval", next).Msg("Interval changed")
				interval = next
				ticker.Reset(interval)
			}
			s.Trigger(completion)
		}
	}
}

func (s *Scheduler) nextInterval() time.Duration {
	return ClampInterval(s.interval())
}

// ClampInterval raises d to MinInterval.
func ClampInterval(d time.Duration) time.Duration {
	return max(d, MinInterval)
}

func (s *Scheduler) worker() {
	defer close(s.done)

	for {
		select {
		case j := <-s.jobs:
			s.execute(j)
		case <-s.quit:
			// A job queued just before Stop still runs to completion.
			select {
			case j := <-s.jobs:
				s.execute(j)
			default:
			}
			return
		}
	}
}

func (s *Scheduler) execute(j job) {
	s.refresh(s.ctx)

	s.mu.Lock()
	s.running = false
	s.refreshes++
	onStop := s.onStop
	s.onStop = nil
	s.mu.Unlock()

	j.completion()

	for _, fn := range onStop {
		fn()
	}
}
