// Package sensor turns hardware providers into classified readings.
package sensor

import "context"

// Source identifies the provider a reading came from.
type Source int

const (
	SourceHID Source = iota
	SourceSMC
	SourceGPU
)

func (s Source) String() string {
	switch s {
	case SourceHID:
		return "hid"
	case SourceSMC:
		return "smc"
	case SourceGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// Kind classifies a reading.
type Kind int

const (
	KindThermal Kind = iota
	KindVoltage
	KindCurrent
	KindFan
)

func (k Kind) String() string {
	switch k {
	case KindThermal:
		return "thermal"
	case KindVoltage:
		return "voltage"
	case KindCurrent:
		return "current"
	case KindFan:
		return "fan"
	default:
		return "unknown"
	}
}

// Unit returns the display unit for values of this kind.
func (k Kind) Unit() string {
	switch k {
	case KindThermal:
		return "°C"
	case KindVoltage:
		return "V"
	case KindCurrent:
		return "A"
	case KindFan:
		return "RPM"
	default:
		return ""
	}
}

// Reading is a decoded sensor value in native units.
type Reading struct {
	Name   string
	Value  float64
	Kind   Kind
	Source Source
	CPU    bool
}

// Key returns the identity of the series this reading belongs to.
func (r Reading) Key() Key {
	return Key{Source: r.Source, Kind: r.Kind, Name: r.Name}
}

// Key identifies a sensor across ticks.
type Key struct {
	Source Source
	Kind   Kind
	Name   string
}

func (k Key) String() string {
	return k.Source.String() + "/" + k.Kind.String() + "/" + k.Name
}

// Provider lists the current readings of one hardware source.
type Provider interface {
	Name() string
	Source() Source
	Readings(ctx context.Context) ([]Reading, error)
	Close() error
}
