// Package power reads the operating system's CPU power budget.
package power

import "context"

// Limits is one power budget snapshot. A nil field was not reported.
type Limits struct {
	SchedulerLimit *uint // percent of CPU time the scheduler may use
	AvailableCPUs  *uint
	SpeedLimit     *uint // percent of nominal clock speed
}

// Empty reports whether no field was set.
func (l Limits) Empty() bool {
	return l.SchedulerLimit == nil && l.AvailableCPUs == nil && l.SpeedLimit == nil
}

// Probe obtains the current power budget.
type Probe interface {
	Probe(ctx context.Context) (Limits, error)
}

func uintPtr(v uint) *uint {
	return &v
}
