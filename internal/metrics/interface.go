// Package metrics records refresh snapshots to an append-only SQLite
// database. Recorded snapshots are never read back by hotctl.
package metrics

import (
	"context"
	"time"

	"codeberg.org/mutker/hotctl/internal/aggregate"
	"github.com/google/uuid"
)

// Recorder is the service the refresh loop talks to.
type Recorder interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Session() uuid.UUID
	Close() error
}

// Repository stores snapshots.
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one stored refresh. Nil fields are stored as NULL.
type Snapshot struct {
	Timestamp       time.Time
	Session         uuid.UUID
	Temperature     *float64
	FanSpeed        *float64
	SchedulerLimit  *uint
	AvailableCPUs   *uint
	SpeedLimit      *uint
	ThermalPressure *int
	Readings        int
}

// FromAggregate converts a refresh result for storage.
func FromAggregate(s aggregate.Snapshot, session uuid.UUID) *Snapshot {
	snap := &Snapshot{
		Timestamp:      s.Time,
		Session:        session,
		Temperature:    s.Temperature,
		FanSpeed:       s.FanSpeed,
		SchedulerLimit: s.SchedulerLimit,
		AvailableCPUs:  s.AvailableCPUs,
		SpeedLimit:     s.SpeedLimit,
		Readings:       s.Readings,
	}

	if s.ThermalPressure != nil {
		level := int(*s.ThermalPressure)
		snap.ThermalPressure = &level
	}

	return snap
}
