package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/hotctl/internal/config"
	"codeberg.org/mutker/hotctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hotctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
interval = 5
read_timeout = 3
selected_sensors = ["pACC MTR Temp Sensor0", "TC0P"]
selection_mode = "exclude"
temperature_mode = "mean"
log_level = "debug"
gpu = true
fahrenheit = true

[metrics]
enabled = true
db_path = "/path/to/metrics.db"
batch_size = 20
`)
	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)

	var provider config.Provider = cfg
	assert.Equal(t, 5*time.Second, provider.GetInterval())
	assert.Equal(t, 3*time.Second, provider.GetReadTimeout())
	assert.Equal(t, []string{"pACC MTR Temp Sensor0", "TC0P"}, cfg.SelectedSensors)
	assert.Equal(t, config.SelectionExclude, cfg.SelectionMode)
	assert.Equal(t, config.TemperatureMean, cfg.TemperatureMode)
	assert.Equal(t, config.LogLevelDebug, cfg.GetLogLevel())
	assert.True(t, cfg.IsGPUEnabled())
	assert.True(t, cfg.IsFahrenheit())
	assert.True(t, cfg.IsMetricsEnabled())
	assert.Equal(t, "/path/to/metrics.db", cfg.GetMetricsDBPath())
	assert.Equal(t, 20, cfg.GetMetricsBatchSize())
	assert.Equal(t, 30*time.Second, cfg.GetMetricsBatchTimeout())
	assert.Equal(t, path, cfg.ConfigFileUsed())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOTCTL_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.GetInterval())
	assert.Equal(t, 5*time.Second, cfg.GetReadTimeout())
	assert.Empty(t, cfg.SelectedSensors)
	assert.Equal(t, config.SelectionInclude, cfg.SelectionMode)
	assert.Equal(t, config.TemperatureMax, cfg.TemperatureMode)
	assert.Equal(t, config.DefaultLogLevel, cfg.GetLogLevel())
	assert.True(t, cfg.IsColorize())
	assert.False(t, cfg.IsGPUEnabled())
	assert.False(t, cfg.IsMetricsEnabled())
	assert.Equal(t, config.DefaultMetricsDBPath, cfg.GetMetricsDBPath())
	defaults := config.DefaultSettings()
	assert.Equal(t, defaults.Interval, cfg.Settings().Interval)
	assert.Equal(t, defaults.SelectionMode, cfg.Settings().SelectionMode)
	assert.Equal(t, defaults.TemperatureMode, cfg.Settings().TemperatureMode)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, `
This is not a valid TOML file
`)
	_, err := config.Load(nil, config.WithConfigFile(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := config.Load(nil, config.WithConfigFile(writeConfig(t, `log_level = "invalid"`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_log_level")
}

func TestInvalidModes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{"selection", `selection_mode = "only"`, config.ErrInvalidSelectionMode},
		{"temperature", `temperature_mode = "median"`, config.ErrInvalidTemperatureMode},
		{"read timeout", `read_timeout = 0`, errors.ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(nil, config.WithConfigFile(writeConfig(t, tt.content)))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code))
		})
	}
}

func TestIntervalClamped(t *testing.T) {
	cfg, err := config.Load(nil, config.WithConfigFile(writeConfig(t, `interval = 0`)))
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.GetInterval())
	assert.Equal(t, time.Second, cfg.Settings().Interval)
}

func TestFlagsOverrideFile(t *testing.T) {
	t.Setenv("HOTCTL_CONFIG", writeConfig(t, "interval = 5\nlog_level = \"error\"\n"))

	cfg, err := config.Load([]string{
		"--interval", "7",
		"--log-level", "info",
		"--sensors", "a,b",
		"--metrics",
		"--metrics-db", "/tmp/m.db",
	})
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, cfg.GetInterval())
	assert.Equal(t, config.LogLevelInfo, cfg.GetLogLevel())
	assert.Equal(t, []string{"a", "b"}, cfg.SelectedSensors)
	assert.True(t, cfg.IsMetricsEnabled())
	assert.Equal(t, "/tmp/m.db", cfg.GetMetricsDBPath())
}

func TestDebugFlagWins(t *testing.T) {
	t.Setenv("HOTCTL_CONFIG", writeConfig(t, `log_level = "error"`))

	cfg, err := config.Load([]string{"--debug"})
	require.NoError(t, err)
	assert.Equal(t, config.LogLevelDebug, cfg.GetLogLevel())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOTCTL_CONFIG", writeConfig(t, `temperature_mode = "max"`))
	t.Setenv("HOTCTL_TEMPERATURE_MODE", "mean")
	t.Setenv("HOTCTL_METRICS_BATCH_SIZE", "3")

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, config.TemperatureMean, cfg.TemperatureMode)
	assert.Equal(t, 3, cfg.GetMetricsBatchSize())
}

func TestEnvPrefix(t *testing.T) {
	path := writeConfig(t, `temperature_mode = "max"`)
	t.Setenv("HOTCTL_TEMPERATURE_MODE", "median")
	t.Setenv("THERMO_TEMPERATURE_MODE", "mean")
	t.Setenv("THERMO_INTERVAL", "9")

	cfg, err := config.Load(nil, config.WithConfigFile(path), config.WithEnvPrefix("THERMO"))
	require.NoError(t, err)
	assert.Equal(t, config.TemperatureMean, cfg.TemperatureMode)
	assert.Equal(t, 9*time.Second, cfg.GetInterval())
}

func TestConfigFileOptionWinsOverEnvironment(t *testing.T) {
	t.Setenv("HOTCTL_CONFIG", writeConfig(t, `interval = 3`))
	path := writeConfig(t, `interval = 6`)

	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, cfg.GetInterval())
	assert.Equal(t, path, cfg.ConfigFileUsed())
}

func TestUnknownFlag(t *testing.T) {
	t.Setenv("HOTCTL_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	_, err := config.Load([]string{"--no-such-flag"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

func TestReload(t *testing.T) {
	path := writeConfig(t, `temperature_mode = "max"`)

	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("temperature_mode = \"mean\"\ninterval = 4\n"), 0o600))

	next, err := cfg.Reload()
	require.NoError(t, err)
	assert.Equal(t, config.TemperatureMean, next.Settings().TemperatureMode)
	assert.Equal(t, 4*time.Second, next.Settings().Interval)
	assert.Equal(t, config.TemperatureMax, cfg.TemperatureMode)
}

func TestReloadWithoutFile(t *testing.T) {
	t.Setenv("HOTCTL_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	_, err = cfg.Reload()
	assert.True(t, errors.HasCode(err, config.ErrNoConfigFile))
}

func TestLive(t *testing.T) {
	s := config.DefaultSettings()
	s.SelectedSensors = []string{"a"}
	live := config.NewLive(s)

	got := live.Load()
	got.SelectedSensors[0] = "changed"
	assert.Equal(t, []string{"a"}, live.Load().SelectedSensors)

	s.TemperatureMode = config.TemperatureMean
	live.Store(s)
	assert.Equal(t, config.TemperatureMean, live.Load().TemperatureMode)
}
