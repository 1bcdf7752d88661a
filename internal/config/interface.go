package config

import "time"

// Provider defines the interface for accessing configuration values.
// Values are fixed after loading; the per-tick subset that may change at
// runtime is exposed through Settings and Live.
type Provider interface {
	// GetInterval returns the refresh interval, never below one second
	GetInterval() time.Duration

	// GetReadTimeout returns the per-provider read bound
	GetReadTimeout() time.Duration

	// GetLogLevel returns the configured logging level
	GetLogLevel() LogLevel

	// IsGPUEnabled returns whether the NVML source is enabled
	IsGPUEnabled() bool

	// IsStatusEnabled returns whether a status line is printed per tick
	IsStatusEnabled() bool

	// IsFahrenheit returns whether temperatures are shown in Fahrenheit
	IsFahrenheit() bool

	// IsColorize returns whether status output may use colour
	IsColorize() bool

	// IsOnce returns whether a single refresh is requested
	IsOnce() bool

	// IsMetricsEnabled returns whether snapshots are recorded
	IsMetricsEnabled() bool

	// GetMetricsDBPath returns the path to the metrics database
	GetMetricsDBPath() string

	// GetMetricsBatchSize returns the number of snapshots per flush
	GetMetricsBatchSize() int

	// GetMetricsBatchTimeout returns the maximum time between flushes
	GetMetricsBatchTimeout() time.Duration

	// Settings returns the values consumed on every tick
	Settings() Settings
}

// Option defines a configuration option that can be passed to Load
type Option func(*options)

// options holds internal configuration options
type options struct {
	configPath string
	envPrefix  string
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithEnvPrefix specifies a custom environment variable prefix.
// Default is "HOTCTL".
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

func (l LogLevel) String() string {
	return string(l)
}

// SelectionMode says how the selected sensor list is applied.
type SelectionMode string

const (
	SelectionInclude SelectionMode = "include"
	SelectionExclude SelectionMode = "exclude"
)

func (m SelectionMode) IsValid() bool {
	return m == SelectionInclude || m == SelectionExclude
}

// TemperatureMode says how candidate temperatures are combined.
type TemperatureMode string

const (
	TemperatureMax  TemperatureMode = "max"
	TemperatureMean TemperatureMode = "mean"
)

func (m TemperatureMode) IsValid() bool {
	return m == TemperatureMax || m == TemperatureMean
}
