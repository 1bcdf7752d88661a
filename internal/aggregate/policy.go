package aggregate

import (
	"math"
	"slices"
	"strings"

	"codeberg.org/mutker/hotctl/internal/config"
	"codeberg.org/mutker/hotctl/internal/sensor"
)

const (
	// TemperatureFloor is the highest combined value treated as no reading.
	TemperatureFloor = 1.0

	// Bounds of a plausible die temperature in the fallback set.
	plausibleMin = 0.0
	plausibleMax = 120.0

	calibrationSuffix = "tcal"
)

// Policy is the selection configuration applied to one tick.
type Policy struct {
	Selected        []string
	SelectionMode   config.SelectionMode
	TemperatureMode config.TemperatureMode
}

// PolicyFrom extracts the selection policy from the tick settings.
func PolicyFrom(s config.Settings) Policy {
	return Policy{
		Selected:        s.SelectedSensors,
		SelectionMode:   s.SelectionMode,
		TemperatureMode: s.TemperatureMode,
	}
}

// Candidates returns the temperatures that represent the CPU this tick. The
// first non-empty set wins: user selection, CPU-tagged readings, then every
// plausible reading minus calibration artifacts. Include mode selects nothing
// without names; exclude mode with no names selects every reading.
func Candidates(readings []sensor.Reading, p Policy) []float64 {
	thermal := make([]sensor.Reading, 0, len(readings))
	for _, r := range readings {
		if r.Kind == sensor.KindThermal {
			thermal = append(thermal, r)
		}
	}

	exclude := p.SelectionMode == config.SelectionExclude
	if exclude || len(p.Selected) > 0 {
		if values := valuesWhere(thermal, func(r sensor.Reading) bool {
			return slices.Contains(p.Selected, r.Name) != exclude
		}); len(values) > 0 {
			return values
		}
	}

	if values := valuesWhere(thermal, func(r sensor.Reading) bool { return r.CPU }); len(values) > 0 {
		return values
	}

	return fallback(thermal)
}

// fallback drops every calibration reading and any other reading whose value
// matches a calibration reading to the hundredth.
func fallback(thermal []sensor.Reading) []float64 {
	plausible := make([]sensor.Reading, 0, len(thermal))
	calibrations := make(map[int64]struct{})

	for _, r := range thermal {
		if !Plausible(r.Value) {
			continue
		}
		if isCalibration(r.Name) {
			calibrations[hundredths(r.Value)] = struct{}{}
			continue
		}
		plausible = append(plausible, r)
	}

	return valuesWhere(plausible, func(r sensor.Reading) bool {
		_, dup := calibrations[hundredths(r.Value)]
		return !dup
	})
}

// Plausible reports whether v lies strictly between 0 and 120 °C.
func Plausible(v float64) bool {
	return v > plausibleMin && v < plausibleMax
}

func isCalibration(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), calibrationSuffix)
}

func hundredths(v float64) int64 {
	return int64(math.Ceil(v * 100))
}

func valuesWhere(readings []sensor.Reading, keep func(sensor.Reading) bool) []float64 {
	var values []float64
	for _, r := range readings {
		if keep(r) {
			values = append(values, r.Value)
		}
	}

	return values
}

// Combine reduces values with the configured mode. ok is false for an empty
// set and for results at or below TemperatureFloor.
func Combine(values []float64, mode config.TemperatureMode) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	var v float64
	switch mode {
	case config.TemperatureMean:
		for _, x := range values {
			v += x
		}
		v /= float64(len(values))
	default:
		v = slices.Max(values)
	}

	if v <= TemperatureFloor {
		return 0, false
	}

	return v, true
}

// Temperature selects and combines the representative temperature.
func Temperature(readings []sensor.Reading, p Policy) (float64, bool) {
	return Combine(Candidates(readings, p), p.TemperatureMode)
}

// FanSpeed returns the fastest fan, or false when no fan was read.
func FanSpeed(readings []sensor.Reading) (float64, bool) {
	var (
		speed float64
		found bool
	)

	for _, r := range readings {
		if r.Kind != sensor.KindFan {
			continue
		}
		if !found || r.Value > speed {
			speed = r.Value
		}
		found = true
	}

	return speed, found
}
