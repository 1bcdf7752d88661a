package gpu

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
	"codeberg.org/mutker/hotctl/internal/sensor"
)

type device struct {
	index int
	name  string
	dev   Device
}

// Source reports one thermal reading per GPU. Fan duty is a percentage, not
// a speed, so it is only logged.
type Source struct {
	lib     Library
	devices []device
	mu      sync.Mutex
	log     logger.Logger
}

// NewSource initialises NVML and enumerates the devices.
func NewSource(log logger.Logger) (*Source, error) {
	return NewSourceWithLibrary(NewLibrary(), log)
}

// NewSourceWithLibrary is NewSource over lib.
func NewSourceWithLibrary(lib Library, log logger.Logger) (*Source, error) {
	errFactory := errors.New()
	log = log.With("gpu")

	if err := lib.Initialize(); err != nil {
		return nil, err
	}

	count, err := lib.GetDeviceCount()
	if err != nil {
		_ = lib.Shutdown()
		return nil, err
	}
	if count == 0 {
		_ = lib.Shutdown()
		return nil, errFactory.New(ErrNoDevices)
	}

	s := &Source{lib: lib, log: log}
	for i := range count {
		dev, err := lib.GetDevice(i)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping GPU")
			continue
		}

		name, err := dev.Name()
		if err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Failed to get GPU name")
			name = "unknown"
		}

		log.Info().Int("index", i).Str("name", name).Msg("Detected GPU")
		s.devices = append(s.devices, device{index: i, name: name, dev: dev})
	}

	if len(s.devices) == 0 {
		_ = lib.Shutdown()
		return nil, errFactory.New(ErrNoDevices)
	}

	return s, nil
}

func (s *Source) Name() string          { return "gpu" }
func (s *Source) Source() sensor.Source { return sensor.SourceGPU }

func (s *Source) Readings(ctx context.Context) ([]sensor.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings := make([]sensor.Reading, 0, len(s.devices))
	for _, d := range s.devices {
		if err := ctx.Err(); err != nil {
			return readings, errors.New().Wrap(errors.ErrTimeout, err)
		}

		temp, err := d.dev.Temperature()
		if err != nil {
			s.log.Debug().Err(err).Int("index", d.index).Msg("Failed to read GPU temperature")
			continue
		}

		readings = append(readings, sensor.Reading{
			Name:   ReadingName(d.index, d.name),
			Value:  float64(temp),
			Kind:   sensor.KindThermal,
			Source: sensor.SourceGPU,
		})

		if speeds, err := d.dev.FanSpeeds(); err == nil {
			s.log.Debug().Int("index", d.index).Ints("fan_percent", speeds).Msg("GPU fan duty")
		}
	}

	return readings, nil
}

// Close shuts NVML down.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lib.Shutdown()
}

// ReadingName is the sensor name of GPU index.
func ReadingName(index int, name string) string {
	return fmt.Sprintf("GPU%d %s", index, name)
}
