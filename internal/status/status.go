// Package status renders the one-line summary and the sensor table printed by
// the command line.
package status

import (
	"fmt"
	"math"
	"sync"

	"codeberg.org/mutker/hotctl/internal/aggregate"
	"codeberg.org/mutker/hotctl/internal/thermal"
)

// WarnSpeedLimit is the speed limit below which the summary is highlighted.
const WarnSpeedLimit = 60

// State is the last known value of every summarised field.
type State struct {
	SpeedLimit  *uint
	Temperature *float64
	FanSpeed    *float64
	Pressure    *thermal.Level
}

// Model accumulates snapshots. A field missing from a snapshot keeps its
// previous value.
type Model struct {
	mu    sync.Mutex
	state State
}

func NewModel() *Model {
	return &Model{}
}

// Update merges the measured fields of s.
func (m *Model) Update(s aggregate.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.SpeedLimit != nil {
		m.state.SpeedLimit = clone(s.SpeedLimit)
	}
	if s.Temperature != nil {
		m.state.Temperature = clone(s.Temperature)
	}
	if s.FanSpeed != nil {
		m.state.FanSpeed = clone(s.FanSpeed)
	}
	if s.ThermalPressure != nil {
		m.state.Pressure = clone(s.ThermalPressure)
	}
}

func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return State{
		SpeedLimit:  clone(m.state.SpeedLimit),
		Temperature: clone(m.state.Temperature),
		FanSpeed:    clone(m.state.FanSpeed),
		Pressure:    clone(m.state.Pressure),
	}
}

// Title is "N% T" when both the speed limit and the temperature are known and
// positive, otherwise whichever of the two is, otherwise empty.
func (s State) Title(fahrenheit bool) string {
	limit := s.SpeedLimit != nil && *s.SpeedLimit > 0
	temp := s.Temperature != nil && *s.Temperature > 0

	switch {
	case limit && temp:
		return fmt.Sprintf("%d%% %s", *s.SpeedLimit, FormatTemperature(*s.Temperature, fahrenheit))
	case limit:
		return fmt.Sprintf("%d%%", *s.SpeedLimit)
	case temp:
		return FormatTemperature(*s.Temperature, fahrenheit)
	default:
		return ""
	}
}

// Warning reports a throttled CPU or elevated thermal pressure.
func (s State) Warning() bool {
	if s.SpeedLimit != nil && *s.SpeedLimit > 0 && *s.SpeedLimit < WarnSpeedLimit {
		return true
	}

	return s.Pressure != nil && *s.Pressure != thermal.Nominal
}

// FormatTemperature rounds celsius to whole degrees in the requested scale.
func FormatTemperature(celsius float64, fahrenheit bool) string {
	if fahrenheit {
		return fmt.Sprintf("%d°F", int(math.Round(celsius*9/5+32)))
	}

	return fmt.Sprintf("%d°C", int(math.Round(celsius)))
}

// FormatFanSpeed is "N RPM", or "Off" for a stopped or unknown fan.
func FormatFanSpeed(rpm *float64) string {
	if rpm == nil || int(*rpm) <= 0 {
		return "Off"
	}

	return fmt.Sprintf("%d RPM", int(*rpm))
}

func FormatPressure(level *thermal.Level) string {
	if level == nil {
		return "--"
	}

	return level.String()
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
