package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"codeberg.org/mutker/hotctl/internal/aggregate"
	"codeberg.org/mutker/hotctl/internal/config"
	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/gpu"
	"codeberg.org/mutker/hotctl/internal/history"
	"codeberg.org/mutker/hotctl/internal/logger"
	"codeberg.org/mutker/hotctl/internal/metrics"
	"codeberg.org/mutker/hotctl/internal/pid"
	"codeberg.org/mutker/hotctl/internal/power"
	"codeberg.org/mutker/hotctl/internal/scheduler"
	"codeberg.org/mutker/hotctl/internal/sensor"
	"codeberg.org/mutker/hotctl/internal/status"
	"codeberg.org/mutker/hotctl/internal/thermal"
)

var (
	cfg       *config.Config
	live      *config.Live
	pidFile   *pid.File
	providers []sensor.Provider
	recorder  metrics.Recorder
	printer   *status.Printer
	model     = status.NewModel()
)

func init() {
	var err error
	cfg, err = config.Load(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, _ := logger.ParseLevel(cfg.GetLogLevel().String())
	logger.Init(level, logger.IsService())
	logger.Debug().Str("file", cfg.ConfigFileUsed()).Msg("Config loaded")

	live = config.NewLive(cfg.Settings())
	printer = status.NewPrinter(os.Stdout, status.Options{
		Fahrenheit: cfg.IsFahrenheit(),
		Colorize:   cfg.IsColorize() && logger.IsTerminal(os.Stdout),
	})
}

func main() {
	if !cfg.IsOnce() {
		pidFile = pid.Default()
		if err := pidFile.Write(); err != nil {
			if errors.HasCode(err, errors.ErrAlreadyRunning) {
				logger.Fatal().Err(err).Msg("hotctl is already running")
			}
			logger.Fatal().Err(err).Msg("failed to write pid file")
		}
	}

	log := logger.Default()
	providers = newProviders(cfg, log)
	agg := aggregate.New(aggregate.Options{
		Providers: providers,
		Probe:     power.NewProbe(),
		Pressure:  thermal.NewReader(),
		Settings:  live.Load,
		Logger:    log,
	})

	if cfg.IsOnce() {
		once(agg)
		cleanup()
		return
	}

	if err := cfg.Watch(live, log); err != nil {
		logger.Debug().Err(err).Msg("Config file not watched")
	}

	recorder = newRecorder(cfg, log)
	agg.Subscribe(func(snap aggregate.Snapshot) {
		model.Update(snap)
		if err := recorder.Record(context.Background(), metrics.FromAggregate(snap, recorder.Session())); err != nil {
			logger.Debug().Err(err).Msg("Failed to record snapshot")
		}
	})

	refresh := func(ctx context.Context) { agg.Refresh(ctx) }
	interval := func() time.Duration { return live.Load().Interval }
	sched := scheduler.New(refresh, interval, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	sched.Run(ctx, func() {
		logSnapshot(agg.Snapshot())
		if cfg.IsStatusEnabled() {
			if err := printer.Print(model.State()); err != nil {
				logger.Debug().Err(err).Msg("Failed to print status")
			}
		}
	})

	sched.Stop(func() {
		logger.Debug().Msg("Scheduler idle")
	})
	sched.Wait()

	refreshes, skipped := sched.Stats()
	logger.Debug().Uint64("refreshes", refreshes).Uint64("skipped", skipped).Msg("Scheduler stopped")

	cleanup()
}

func newProviders(c config.Provider, log logger.Logger) []sensor.Provider {
	timeout := c.GetReadTimeout()
	list := []sensor.Provider{
		sensor.WithTimeout(sensor.NewHID(log), timeout),
		sensor.WithTimeout(sensor.NewSMC(log), timeout),
	}

	if c.IsGPUEnabled() {
		src, err := gpu.NewSource(log)
		if err != nil {
			logger.Warn().Err(err).Msg("GPU sensors unavailable")
		} else {
			list = append(list, sensor.WithTimeout(src, timeout))
		}
	}

	return list
}

func newRecorder(c config.Provider, log logger.Logger) metrics.Recorder {
	mcfg := metrics.Config{
		DBPath:       c.GetMetricsDBPath(),
		BatchSize:    c.GetMetricsBatchSize(),
		BatchTimeout: c.GetMetricsBatchTimeout(),
		Enabled:      c.IsMetricsEnabled(),
	}

	rec, err := metrics.NewService(mcfg, log)
	if err != nil {
		logger.Warn().Err(err).Msg("Snapshot recording disabled")
		mcfg.Enabled = false
		rec, _ = metrics.NewService(mcfg, log)
	}

	return rec
}

func once(agg *aggregate.Aggregator) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetReadTimeout()*time.Duration(len(providers)+1))
	defer cancel()

	snap := agg.Refresh(ctx)
	logSnapshot(snap)
	model.Update(snap)

	if err := printer.Print(model.State()); err != nil {
		logger.Error().Err(err).Msg("Failed to print status")
	}
	temps := currentSeries(agg.Series(sensor.KindThermal), agg.Sensors())
	fans := currentSeries(agg.Series(sensor.KindFan), agg.Fans())
	if err := printer.PrintTable(temps, fans); err != nil {
		logger.Error().Err(err).Msg("Failed to print sensors")
	}
}

// currentSeries keeps the entries named in the latest refresh.
func currentSeries(entries []history.Entry, current map[string]float64) []history.Entry {
	return slices.DeleteFunc(entries, func(e history.Entry) bool {
		_, ok := current[e.Key.Name]
		return !ok
	})
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup() {
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close recorder")
		}
	}
	for _, p := range providers {
		if err := p.Close(); err != nil {
			logger.Debug().Err(err).Str("provider", p.Name()).Msg("failed to close provider")
		}
	}
	if pidFile != nil {
		if err := pidFile.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove pid file")
		}
	}
	logger.Info().Msg("Exiting...")
}

func logSnapshot(snap aggregate.Snapshot) {
	event := logger.Info().Int("readings", snap.Readings)
	if snap.Temperature != nil {
		event = event.Float64("temperature", *snap.Temperature)
	}
	if snap.FanSpeed != nil {
		event = event.Float64("fan_speed", *snap.FanSpeed)
	}
	if snap.SpeedLimit != nil {
		event = event.Uint("speed_limit", *snap.SpeedLimit)
	}
	if snap.SchedulerLimit != nil {
		event = event.Uint("scheduler_limit", *snap.SchedulerLimit)
	}
	if snap.AvailableCPUs != nil {
		event = event.Uint("available_cpus", *snap.AvailableCPUs)
	}
	if snap.ThermalPressure != nil {
		event = event.Str("thermal_pressure", snap.ThermalPressure.String())
	}
	event.Msg("")
}
