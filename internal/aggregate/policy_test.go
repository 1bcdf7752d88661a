package aggregate

import (
	"testing"

	"codeberg.org/mutker/hotctl/internal/config"
	"codeberg.org/mutker/hotctl/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thermalReading(name string, v float64, cpu bool) sensor.Reading {
	return sensor.Reading{Name: name, Value: v, Kind: sensor.KindThermal, Source: sensor.SourceHID, CPU: cpu}
}

func maxPolicy() Policy {
	return PolicyFrom(config.DefaultSettings())
}

func TestTemperatureCPUSetWins(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("A", 80, true),
		thermalReading("B", 85, true),
		thermalReading("C", 90, false),
	}

	v, ok := Temperature(readings, maxPolicy())
	require.True(t, ok)
	assert.InDelta(t, 85.0, v, 1e-9)
}

func TestTemperatureSelectionInclude(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("A", 80, true),
		thermalReading("B", 85, true),
		thermalReading("C", 90, false),
	}
	p := maxPolicy()
	p.Selected = []string{"A", "C"}

	v, ok := Temperature(readings, p)
	require.True(t, ok)
	assert.InDelta(t, 90.0, v, 1e-9)
}

func TestTemperatureSelectionExclude(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("A", 80, true),
		thermalReading("B", 85, true),
		thermalReading("C", 90, false),
	}
	p := maxPolicy()
	p.Selected = []string{"B", "C"}
	p.SelectionMode = config.SelectionExclude

	v, ok := Temperature(readings, p)
	require.True(t, ok)
	assert.InDelta(t, 80.0, v, 1e-9)
}

func TestTemperatureSelectionExcludeNothing(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("A", 80, true),
		thermalReading("B", 85, true),
		thermalReading("C", 90, false),
	}
	p := maxPolicy()
	p.SelectionMode = config.SelectionExclude

	v, ok := Temperature(readings, p)
	require.True(t, ok)
	assert.InDelta(t, 90.0, v, 1e-9)
}

func TestTemperatureSelectionIncludeNothing(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("A", 80, true),
		thermalReading("C", 90, false),
	}

	v, ok := Temperature(readings, maxPolicy())
	require.True(t, ok)
	assert.InDelta(t, 80.0, v, 1e-9)
}

func TestTemperatureSelectionMissFallsThrough(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("A", 80, true),
		thermalReading("C", 90, false),
	}
	p := maxPolicy()
	p.Selected = []string{"gone"}

	v, ok := Temperature(readings, p)
	require.True(t, ok)
	assert.InDelta(t, 80.0, v, 1e-9)
}

func TestTemperatureIgnoresOtherKinds(t *testing.T) {
	readings := []sensor.Reading{
		{Name: "VD0R", Value: 12, Kind: sensor.KindVoltage},
		{Name: "F0Ac", Value: 1200, Kind: sensor.KindFan},
		thermalReading("TC0P", 48, false),
	}

	v, ok := Temperature(readings, maxPolicy())
	require.True(t, ok)
	assert.InDelta(t, 48.0, v, 1e-9)
}

func TestCalibrationDeduplication(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("PMU tcal", 45.00, false),
		thermalReading("PMU tdie1", 45.00, false),
	}

	assert.Empty(t, Candidates(readings, maxPolicy()))

	_, ok := Temperature(readings, maxPolicy())
	assert.False(t, ok)
}

func TestCalibrationKeepsDistinctValues(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("PMU TCAL", 45.00, false),
		thermalReading("PMU tdie1", 45.004, false),
		thermalReading("PMU tdie2", 51.5, false),
	}

	// 45.004 rounds up to 4501 hundredths, distinct from 4500.
	assert.ElementsMatch(t, []float64{45.004, 51.5}, Candidates(readings, maxPolicy()))
}

func TestFallbackDropsImplausible(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("bogus high", 128, false),
		thermalReading("bogus zero", 0, false),
		thermalReading("board", 38, false),
	}

	assert.Equal(t, []float64{38}, Candidates(readings, maxPolicy()))
}

func TestTemperatureFloor(t *testing.T) {
	readings := []sensor.Reading{
		thermalReading("A", 0.5, true),
		thermalReading("B", 1.0, true),
	}

	_, ok := Temperature(readings, maxPolicy())
	assert.False(t, ok)
}

func TestCombine(t *testing.T) {
	v, ok := Combine([]float64{40, 50, 60}, config.TemperatureMean)
	require.True(t, ok)
	assert.InDelta(t, 50.0, v, 1e-9)

	v, ok = Combine([]float64{40, 50, 60}, config.TemperatureMax)
	require.True(t, ok)
	assert.InDelta(t, 60.0, v, 1e-9)

	_, ok = Combine(nil, config.TemperatureMax)
	assert.False(t, ok)

	_, ok = Combine([]float64{0.5, 1.5}, config.TemperatureMean)
	assert.False(t, ok)
}

func TestFanSpeed(t *testing.T) {
	_, ok := FanSpeed([]sensor.Reading{thermalReading("A", 50, true)})
	assert.False(t, ok)

	v, ok := FanSpeed([]sensor.Reading{
		{Name: "F0Ac", Value: 1200, Kind: sensor.KindFan},
		{Name: "F1Ac", Value: 2400, Kind: sensor.KindFan},
		thermalReading("A", 5000, true),
	})
	require.True(t, ok)
	assert.InDelta(t, 2400.0, v, 1e-9)

	v, ok = FanSpeed([]sensor.Reading{{Name: "F0Ac", Value: 0, Kind: sensor.KindFan}})
	require.True(t, ok)
	assert.Zero(t, v)
}
