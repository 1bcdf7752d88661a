package config

import (
	"slices"
	"sync/atomic"
	"time"
)

// Settings are the values re-read on every refresh tick.
type Settings struct {
	Interval        time.Duration
	SelectedSensors []string
	SelectionMode   SelectionMode
	TemperatureMode TemperatureMode
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Interval:        DefaultInterval * time.Second,
		SelectionMode:   SelectionInclude,
		TemperatureMode: TemperatureMax,
	}
}

// Live holds the current Settings and may be swapped while ticks read it.
type Live struct {
	current atomic.Pointer[Settings]
}

// NewLive returns a Live holding s.
func NewLive(s Settings) *Live {
	l := &Live{}
	l.Store(s)

	return l
}

// Load returns a copy of the current settings.
func (l *Live) Load() Settings {
	s := *l.current.Load()
	s.SelectedSensors = slices.Clone(s.SelectedSensors)

	return s
}

// Store replaces the current settings.
func (l *Live) Store(s Settings) {
	s.SelectedSensors = slices.Clone(s.SelectedSensors)
	l.current.Store(&s)
}
