package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/hotctl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRefresh signals entry on started and waits for release.
type blockingRefresh struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newBlockingRefresh() *blockingRefresh {
	return &blockingRefresh{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (b *blockingRefresh) refresh(context.Context) {
	b.calls.Add(1)
	b.started <- struct{}{}
	<-b.release
}

func fixedInterval(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

func waitStarted(t *testing.T, b *blockingRefresh) {
	t.Helper()
	select {
	case <-b.started:
	case <-time.After(time.Second):
		t.Fatal("refresh did not start")
	}
}

func TestSingleFlight(t *testing.T) {
	b := newBlockingRefresh()
	s := New(b.refresh, fixedInterval(time.Second), logger.Nop())

	var completions atomic.Int32
	first := make(chan struct{})

	s.Trigger(func() {
		completions.Add(1)
		close(first)
	})
	waitStarted(t, b)
	assert.Equal(t, Running, s.State())

	s.Trigger(func() { completions.Add(1) })
	assert.Equal(t, int32(1), completions.Load(), "second request completes without work")

	close(b.release)
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first refresh did not complete")
	}

	assert.Equal(t, int32(1), b.calls.Load())
	assert.Equal(t, int32(2), completions.Load())

	refreshes, skipped := s.Stats()
	assert.Equal(t, uint64(1), refreshes)
	assert.Equal(t, uint64(1), skipped)
	assert.Equal(t, Idle, s.State())

	s.Stop(nil)
	s.Wait()
}

func TestStopDefersUntilCompletion(t *testing.T) {
	b := newBlockingRefresh()
	s := New(b.refresh, fixedInterval(time.Second), logger.Nop())

	var mu sync.Mutex
	var order []string
	record := func(event string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, event)
		}
	}

	s.Trigger(record("completion"))
	waitStarted(t, b)

	s.Stop(record("stopped"))
	mu.Lock()
	assert.Empty(t, order, "stop must wait for the in-flight refresh")
	mu.Unlock()
	assert.Equal(t, Stopped, s.State())

	close(b.release)
	s.Wait()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"completion", "stopped"}, order)
	mu.Unlock()
}

func TestStopIdleIsImmediateAndIdempotent(t *testing.T) {
	s := New(func(context.Context) {}, fixedInterval(time.Second), logger.Nop())

	calls := 0
	s.Stop(func() { calls++ })
	s.Stop(func() { calls++ })
	s.Stop(nil)

	assert.Equal(t, 2, calls)
	assert.Equal(t, Stopped, s.State())
	s.Wait()
}

func TestTriggerAfterStop(t *testing.T) {
	var calls atomic.Int32
	s := New(func(context.Context) { calls.Add(1) }, fixedInterval(time.Second), logger.Nop())
	s.Stop(nil)
	s.Wait()

	completed := false
	s.Trigger(func() { completed = true })

	assert.True(t, completed)
	assert.Zero(t, calls.Load())
}

func TestRun(t *testing.T) {
	refreshed := make(chan struct{}, 4)
	s := New(func(context.Context) { refreshed <- struct{}{} }, fixedInterval(0), logger.Nop())

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		s.Run(context.Background(), nil)
	}()

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("Run did not refresh immediately")
	}

	s.Stop(nil)
	s.Wait()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestRunContextCancel(t *testing.T) {
	s := New(func(context.Context) {}, fixedInterval(time.Second), logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, nil)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run ignored cancelled context")
	}

	s.Stop(nil)
	s.Wait()
}

func TestClampInterval(t *testing.T) {
	assert.Equal(t, MinInterval, ClampInterval(0))
	assert.Equal(t, MinInterval, ClampInterval(-time.Second))
	assert.Equal(t, 3*time.Second, ClampInterval(3*time.Second))
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
}
