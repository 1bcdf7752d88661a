package history

import (
	"cmp"
	"slices"
	"sync"

	"codeberg.org/mutker/hotctl/internal/sensor"
)

// View is a read-only handle on one sensor's history.
type View interface {
	Values() []float64
	Len() int
	Last() (float64, bool)
	Min() (float64, bool)
	Max() (float64, bool)
}

// Entry pairs a sensor identity with its history.
type Entry struct {
	Key    sensor.Key
	Series View
}

// Store owns one Series per sensor key. Series are created on first
// observation and live as long as the store.
type Store struct {
	mu     sync.RWMutex
	series map[sensor.Key]*Series
}

func NewStore() *Store {
	return &Store{series: make(map[sensor.Key]*Series)}
}

// Record appends every reading to its series.
func (s *Store) Record(readings []sensor.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range readings {
		k := r.Key()
		series, ok := s.series[k]
		if !ok {
			series = NewSeries()
			s.series[k] = series
		}
		series.Append(r.Value)
	}
}

// All returns every series of the given kind sorted by source then name.
func (s *Store) All(kind sensor.Kind) []Entry {
	s.mu.RLock()
	entries := make([]Entry, 0, len(s.series))
	for k, series := range s.series {
		if k.Kind == kind {
			entries = append(entries, Entry{Key: k, Series: series})
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(a.Key.Source, b.Key.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Key.Name, b.Key.Name)
	})

	return entries
}

// Len returns the number of tracked sensors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.series)
}
