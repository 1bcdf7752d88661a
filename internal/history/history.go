// Package history keeps a bounded window of recent samples per sensor.
package history

import (
	"slices"
	"sync"
)

// Capacity is the number of samples retained per series.
const Capacity = 50

// Series is a FIFO of the most recent samples. It is safe for concurrent use.
type Series struct {
	mu     sync.RWMutex
	values []float64
	limit  int
}

// NewSeries returns an empty series holding at most Capacity samples.
func NewSeries() *Series {
	return NewSeriesWithCapacity(Capacity)
}

// NewSeriesWithCapacity returns an empty series holding at most limit samples.
func NewSeriesWithCapacity(limit int) *Series {
	if limit < 1 {
		limit = 1
	}

	return &Series{
		values: make([]float64, 0, limit),
		limit:  limit,
	}
}

// Append adds a sample, evicting the oldest once the window is full.
func (s *Series) Append(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == s.limit {
		copy(s.values, s.values[1:])
		s.values[len(s.values)-1] = v
		return
	}

	s.values = append(s.values, v)
}

// Values returns a copy of the retained samples, oldest first.
func (s *Series) Values() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.values)
}

// Len returns the number of retained samples.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}

func (s *Series) Last() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.values) == 0 {
		return 0, false
	}

	return s.values[len(s.values)-1], true
}

func (s *Series) Min() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.values) == 0 {
		return 0, false
	}

	return slices.Min(s.values), true
}

func (s *Series) Max() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.values) == 0 {
		return 0, false
	}

	return slices.Max(s.values), true
}
