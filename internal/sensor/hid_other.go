//go:build !darwin || !cgo

package sensor

import (
	"context"
	"unicode/utf8"

	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
	"github.com/shirou/gopsutil/v4/sensors"
)

// HIDProvider reads host temperature sensors through gopsutil. On Linux these
// are the hwmon chips.
type HIDProvider struct {
	temperatures func(ctx context.Context) ([]sensors.TemperatureStat, error)
	log          logger.Logger
}

// NewHID returns the host temperature provider.
func NewHID(log logger.Logger) *HIDProvider {
	return &HIDProvider{
		temperatures: sensors.TemperaturesWithContext,
		log:          log.With("hid"),
	}
}

func (p *HIDProvider) Name() string   { return "hid" }
func (p *HIDProvider) Source() Source { return SourceHID }

func (p *HIDProvider) Readings(ctx context.Context) ([]Reading, error) {
	temps, err := p.temperatures(ctx)
	if err != nil && len(temps) == 0 {
		return nil, errors.New().Wrap(ErrUnavailable, err)
	}
	if err != nil {
		// Partial results come back with a warning list.
		p.log.Debug().Err(err).Msg("Partial sensor read")
	}

	readings := make([]Reading, 0, len(temps))
	for _, t := range temps {
		if t.SensorKey == "" || !utf8.ValidString(t.SensorKey) {
			continue
		}

		readings = append(readings, Reading{
			Name:   t.SensorKey,
			Value:  t.Temperature,
			Kind:   KindThermal,
			Source: SourceHID,
			CPU:    IsCPUName(t.SensorKey),
		})
	}

	return dedupe(readings), nil
}

func (p *HIDProvider) Close() error { return nil }
