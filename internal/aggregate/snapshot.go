package aggregate

import (
	"time"

	"codeberg.org/mutker/hotctl/internal/thermal"
)

// Snapshot is the result of one completed refresh. A nil field was not
// measured during that refresh.
type Snapshot struct {
	Time            time.Time
	SchedulerLimit  *uint
	AvailableCPUs   *uint
	SpeedLimit      *uint
	Temperature     *float64
	FanSpeed        *float64
	ThermalPressure *thermal.Level
	Readings        int
}

func ptr[T any](v T) *T {
	return &v
}
