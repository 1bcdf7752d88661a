package config

import (
	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration file whenever it changes and stores the
// new Settings in live. A file that fails to load or validate is logged and
// the previous settings stay in effect.
func (c *Config) Watch(live *Live, log logger.Logger) error {
	if c.ConfigFileUsed() == "" {
		return errors.New().New(ErrNoConfigFile)
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		next, err := c.Reload()
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("Ignoring invalid configuration")
			return
		}

		live.Store(next.Settings())
		log.Info().
			Str("file", e.Name).
			Dur("interval", next.GetInterval()).
			Strs("selected_sensors", next.SelectedSensors).
			Str("selection_mode", string(next.SelectionMode)).
			Str("temperature_mode", string(next.TemperatureMode)).
			Msg("Configuration reloaded")
	})
	c.v.WatchConfig()

	return nil
}
