// Package aggregate reduces the readings of every provider to one snapshot
// per refresh and keeps the per-sensor history.
package aggregate

import (
	"context"
	"maps"
	"sync"
	"time"

	"codeberg.org/mutker/hotctl/internal/config"
	"codeberg.org/mutker/hotctl/internal/history"
	"codeberg.org/mutker/hotctl/internal/logger"
	"codeberg.org/mutker/hotctl/internal/power"
	"codeberg.org/mutker/hotctl/internal/sensor"
	"codeberg.org/mutker/hotctl/internal/thermal"
)

// Options configures an Aggregator. Probe, Pressure and Settings may be nil.
type Options struct {
	Providers []sensor.Provider
	Probe     power.Probe
	Pressure  thermal.Reader
	Settings  func() config.Settings
	Logger    logger.Logger
	Now       func() time.Time
}

// Aggregator owns the sensor history and the latest snapshot. Refresh must
// not be called concurrently; the accessors may be called at any time.
type Aggregator struct {
	providers []sensor.Provider
	probe     power.Probe
	pressure  thermal.Reader
	settings  func() config.Settings
	log       logger.Logger
	now       func() time.Time
	store     *history.Store

	mu        sync.RWMutex
	snapshot  Snapshot
	sensors   map[string]float64
	fans      map[string]float64
	listeners []func(Snapshot)
}

func New(opts Options) *Aggregator {
	a := &Aggregator{
		providers: opts.Providers,
		probe:     opts.Probe,
		pressure:  opts.Pressure,
		settings:  opts.Settings,
		log:       opts.Logger,
		now:       opts.Now,
		store:     history.NewStore(),
		sensors:   map[string]float64{},
		fans:      map[string]float64{},
	}

	if a.settings == nil {
		a.settings = config.DefaultSettings
	}
	if a.log == nil {
		a.log = logger.Nop()
	}
	a.log = a.log.With("aggregate")
	if a.now == nil {
		a.now = time.Now
	}

	return a
}

// Refresh reads every provider, updates the history and publishes a new
// snapshot to the subscribers. Provider failures only remove that
// provider's readings from this refresh.
func (a *Aggregator) Refresh(ctx context.Context) Snapshot {
	policy := PolicyFrom(a.settings())

	var readings []sensor.Reading
	for _, p := range a.providers {
		r, err := p.Readings(ctx)
		if err != nil {
			a.log.Debug().Err(err).Str("provider", p.Name()).Msg("Provider returned no readings")
			continue
		}
		readings = append(readings, r...)
	}

	a.store.Record(readings)

	snap := Snapshot{
		Time:     a.now(),
		Readings: len(readings),
	}

	if v, ok := Temperature(readings, policy); ok {
		snap.Temperature = ptr(v)
	}
	if v, ok := FanSpeed(readings); ok {
		snap.FanSpeed = ptr(v)
	}

	if a.pressure != nil {
		if level, ok := a.pressure.Pressure(); ok {
			snap.ThermalPressure = ptr(level)
		}
	}

	if a.probe != nil {
		limits, err := a.probe.Probe(ctx)
		if err != nil {
			a.log.Debug().Err(err).Msg("Power limits unavailable")
		}
		snap.SchedulerLimit = limits.SchedulerLimit
		snap.AvailableCPUs = limits.AvailableCPUs
		snap.SpeedLimit = limits.SpeedLimit
	}

	sensors := make(map[string]float64)
	fans := make(map[string]float64)
	for _, r := range readings {
		switch {
		case r.Kind == sensor.KindThermal && Plausible(r.Value):
			sensors[r.Name] = r.Value
		case r.Kind == sensor.KindFan:
			fans[r.Name] = r.Value
		}
	}

	a.mu.Lock()
	a.snapshot = snap
	a.sensors = sensors
	a.fans = fans
	listeners := a.listeners
	a.mu.Unlock()

	a.log.Debug().
		Int("readings", snap.Readings).
		Bool("temperature", snap.Temperature != nil).
		Bool("fan", snap.FanSpeed != nil).
		Msg("Refreshed")

	for _, fn := range listeners {
		fn(snap)
	}

	return snap
}

// Snapshot returns the result of the latest refresh.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.snapshot
}

// Sensors returns the plausible temperature readings of the latest refresh
// by name.
func (a *Aggregator) Sensors() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return maps.Clone(a.sensors)
}

// Fans returns the fan speeds of the latest refresh by name.
func (a *Aggregator) Fans() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return maps.Clone(a.fans)
}

// Series returns read-only history views for kind, sorted by name.
func (a *Aggregator) Series(kind sensor.Kind) []history.Entry {
	return a.store.All(kind)
}

// Subscribe registers fn to receive every new snapshot. Subscribers run on
// the refreshing goroutine after the snapshot is stored.
func (a *Aggregator) Subscribe(fn func(Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.listeners = append(a.listeners[:len(a.listeners):len(a.listeners)], fn)
}
