package sensor

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/hotctl/internal/errors"
)

type result struct {
	readings []Reading
	err      error
}

// bounded limits how long a single Readings call may block. A call that
// outlives its deadline keeps the provider locked until it returns, and
// calls made in the meantime fail fast with ErrBusy instead of stacking up
// on the hardware.
type bounded struct {
	Provider
	timeout time.Duration
	mu      sync.Mutex
}

// WithTimeout wraps p so that Readings returns after at most timeout.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}

	return &bounded{Provider: p, timeout: timeout}
}

func (b *bounded) Readings(ctx context.Context) ([]Reading, error) {
	errFactory := errors.New()

	if !b.mu.TryLock() {
		return nil, errFactory.WithData(ErrBusy, b.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	done := make(chan result, 1)

	go func() {
		defer b.mu.Unlock()
		readings, err := b.Provider.Readings(ctx)
		done <- result{readings: readings, err: err}
	}()

	select {
	case r := <-done:
		cancel()
		return r.readings, r.err
	case <-ctx.Done():
		cancel()
		return nil, errFactory.Wrap(ErrTimeout, ctx.Err())
	}
}
