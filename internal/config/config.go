package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/hotctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval            = 2
	DefaultReadTimeout         = 5
	DefaultLogLevel            = LogLevelWarning
	DefaultMetricsDBPath       = "/var/lib/hotctl/metrics.db"
	DefaultMetricsBatchSize    = 10
	DefaultMetricsBatchTimeout = 30
	DefaultEnvPrefix           = "HOTCTL"
	configName                 = "hotctl"
)

type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DBPath       string `mapstructure:"db_path"`
	BatchSize    int    `mapstructure:"batch_size"`
	BatchTimeout int    `mapstructure:"batch_timeout"`
}

type Config struct {
	Interval        int             `mapstructure:"interval"`
	ReadTimeout     int             `mapstructure:"read_timeout"`
	SelectedSensors []string        `mapstructure:"selected_sensors"`
	SelectionMode   SelectionMode   `mapstructure:"selection_mode"`
	TemperatureMode TemperatureMode `mapstructure:"temperature_mode"`
	LogLevel        LogLevel        `mapstructure:"log_level"`
	Debug           bool            `mapstructure:"debug"`
	Verbose         bool            `mapstructure:"verbose"`
	GPU             bool            `mapstructure:"gpu"`
	Status          bool            `mapstructure:"status"`
	Fahrenheit      bool            `mapstructure:"fahrenheit"`
	Colorize        bool            `mapstructure:"colorize"`
	Once            bool            `mapstructure:"once"`
	Metrics         MetricsConfig   `mapstructure:"metrics"`

	v *viper.Viper
}

var _ Provider = (*Config)(nil)

// Load reads defaults, the config file, the environment and args, in
// increasing order of precedence.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}
	if err := bindFlags(v, fs); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := o.configPath
	if path == "" {
		path, _ = fs.GetString("config")
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("read_timeout", DefaultReadTimeout)
	v.SetDefault("selected_sensors", []string{})
	v.SetDefault("selection_mode", string(SelectionInclude))
	v.SetDefault("temperature_mode", string(TemperatureMax))
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("colorize", true)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.db_path", DefaultMetricsDBPath)
	v.SetDefault("metrics.batch_size", DefaultMetricsBatchSize)
	v.SetDefault("metrics.batch_timeout", DefaultMetricsBatchTimeout)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)

	fs.String("config", "", "Path to configuration file")
	fs.Int("interval", DefaultInterval, "Interval between refreshes in seconds")
	fs.Int("read-timeout", DefaultReadTimeout, "Maximum time a sensor read may take in seconds")
	fs.StringSlice("sensors", nil, "Sensor names to include or exclude")
	fs.String("selection-mode", string(SelectionInclude), "How --sensors is applied (include, exclude)")
	fs.String("temperature-mode", string(TemperatureMax), "How temperatures are combined (max, mean)")
	fs.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.Bool("gpu", false, "Read NVIDIA GPU temperatures")
	fs.Bool("status", false, "Print a status line after every refresh")
	fs.Bool("fahrenheit", false, "Show temperatures in Fahrenheit")
	fs.Bool("colorize", true, "Colour the status line on terminals")
	fs.Bool("once", false, "Refresh once, print and exit")
	fs.Bool("metrics", false, "Record snapshots to the metrics database")
	fs.String("metrics-db", DefaultMetricsDBPath, "Path to the metrics database")

	return fs
}

// flagKeys maps flag names to configuration keys where they differ.
var flagKeys = map[string]string{
	"read-timeout":     "read_timeout",
	"sensors":          "selected_sensors",
	"selection-mode":   "selection_mode",
	"temperature-mode": "temperature_mode",
	"log-level":        "log_level",
	"metrics":          "metrics.enabled",
	"metrics-db":       "metrics.db_path",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error

	fs.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" {
			return
		}

		key := f.Name
		if mapped, ok := flagKeys[f.Name]; ok {
			key = mapped
		}

		bindErr = v.BindPFlag(key, f)
	})

	return bindErr
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New().Wrap(ErrUnmarshal, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate normalises the configuration and rejects invalid values.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval < 1 {
		c.Interval = 1
	}

	if c.ReadTimeout < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, "read_timeout")
	}

	if c.Metrics.BatchTimeout < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, "metrics.batch_timeout")
	}

	if c.Metrics.BatchSize < 1 {
		c.Metrics.BatchSize = 1
	}

	switch {
	case c.Debug:
		c.LogLevel = LogLevelDebug
	case c.Verbose:
		c.LogLevel = LogLevelInfo
	}

	c.LogLevel = LogLevel(strings.ToLower(string(c.LogLevel)))
	if !c.LogLevel.IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	c.SelectionMode = SelectionMode(strings.ToLower(string(c.SelectionMode)))
	if !c.SelectionMode.IsValid() {
		return errFactory.WithData(ErrInvalidSelectionMode, c.SelectionMode)
	}

	c.TemperatureMode = TemperatureMode(strings.ToLower(string(c.TemperatureMode)))
	if !c.TemperatureMode.IsValid() {
		return errFactory.WithData(ErrInvalidTemperatureMode, c.TemperatureMode)
	}

	return nil
}

// ConfigFileUsed returns the path of the file that was read, if any.
func (c *Config) ConfigFileUsed() string {
	if c.v == nil {
		return ""
	}

	return c.v.ConfigFileUsed()
}

// Reload re-reads every source and returns the new configuration. The
// receiver is left untouched.
func (c *Config) Reload() (*Config, error) {
	errFactory := errors.New()

	if c.ConfigFileUsed() == "" {
		return nil, errFactory.New(ErrNoConfigFile)
	}

	if err := c.v.ReadInConfig(); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	return decode(c.v)
}

func (c *Config) Settings() Settings {
	return Settings{
		Interval:        c.GetInterval(),
		SelectedSensors: c.SelectedSensors,
		SelectionMode:   c.SelectionMode,
		TemperatureMode: c.TemperatureMode,
	}
}

func (c *Config) GetInterval() time.Duration {
	return time.Duration(max(c.Interval, 1)) * time.Second
}

func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

func (c *Config) GetLogLevel() LogLevel    { return c.LogLevel }
func (c *Config) IsGPUEnabled() bool       { return c.GPU }
func (c *Config) IsStatusEnabled() bool    { return c.Status }
func (c *Config) IsFahrenheit() bool       { return c.Fahrenheit }
func (c *Config) IsColorize() bool         { return c.Colorize }
func (c *Config) IsOnce() bool             { return c.Once }
func (c *Config) IsMetricsEnabled() bool   { return c.Metrics.Enabled }
func (c *Config) GetMetricsDBPath() string { return c.Metrics.DBPath }
func (c *Config) GetMetricsBatchSize() int { return c.Metrics.BatchSize }

func (c *Config) GetMetricsBatchTimeout() time.Duration {
	return time.Duration(c.Metrics.BatchTimeout) * time.Second
}
