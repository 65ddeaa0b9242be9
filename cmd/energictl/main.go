package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/energictl/internal/benchmark"
	"codeberg.org/mutker/energictl/internal/config"
	"codeberg.org/mutker/energictl/internal/energy"
	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/logger"
	"codeberg.org/mutker/energictl/internal/power"
	"codeberg.org/mutker/energictl/internal/telemetry"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		applyLogLevel(cfg.LogLevel)
	}

	if len(cfg.Command) == 0 {
		logger.Error().Msg("No command provided to measure")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg); err != nil {
		var domainErr errors.Error
		if errors.As(err, &domainErr) {
			logger.ErrorWithCode(domainErr).Msg("Measurement failed")
		} else {
			logger.Error().Err(err).Msg("Measurement failed")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	source, err := power.ParseKind(cfg.Source)
	if err != nil {
		return err
	}

	executor, err := benchmark.New(benchmark.Config{
		Duration:       cfg.Duration,
		SampleInterval: cfg.Interval,
		Source:         source,
	})
	if err != nil {
		return err
	}

	collector, err := telemetry.NewService(telemetry.Config{
		DBPath:  cfg.TelemetryDB,
		Enabled: cfg.Telemetry,
	}, logger.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}()

	result, err := executor.Measure(ctx, func() error {
		return runCommand(ctx, cfg.Command)
	})
	if err != nil {
		return err
	}

	if err := recordRun(ctx, collector, cfg, result); err != nil {
		logger.Warn().Err(err).Msg("Failed to record run telemetry")
	}

	output, err := formatResult(result, cfg.Format, cfg.Co2ePerKWh)
	if err != nil {
		return err
	}
	fmt.Println(output)

	return nil
}

func runCommand(ctx context.Context, command []string) error {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	return cmd.Run()
}

func recordRun(ctx context.Context, collector telemetry.Collector, cfg *config.Config, result *benchmark.Result) error {
	return collector.Record(ctx, &telemetry.RunRecord{
		Timestamp:    time.Now(),
		Duration:     result.Duration,
		EnergyJoules: result.TotalEnergy,
		AverageWatts: result.AveragePower,
		PeakWatts:    result.PeakPower,
		Method:       result.Method.String(),
		Co2eGrams:    result.Co2e(cfg.Co2ePerKWh),
		SampleCount:  result.SampleCount,
		Degraded:     result.Degraded,
	})
}

func formatResult(result *benchmark.Result, format string, co2ePerKWh float64) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(struct {
			*benchmark.Result
			Co2eGrams float64 `json:"co2e_grams"`
		}{result, result.Co2e(co2ePerKWh)}, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "csv":
		header := "energy_joules,energy_kwh,power_watts,peak_power_watts,duration_seconds,co2e_grams,measurement_method"
		row := fmt.Sprintf("%g,%g,%g,%g,%g,%g,%s",
			result.TotalEnergy,
			energy.JoulesToKWh(result.TotalEnergy),
			result.AveragePower,
			result.PeakPower,
			result.Duration.Seconds(),
			result.Co2e(co2ePerKWh),
			result.Method,
		)
		return header + "\n" + row, nil

	default:
		degraded := ""
		if result.Degraded {
			degraded = "\nWarning: no samples collected, energy figure is not meaningful"
		}
		return fmt.Sprintf(
			"Energy Measurement Results:\n"+
				"Energy consumed: %.6f kWh  (%.2f joules)\n"+
				"Average power: %.2f watts\n"+
				"Peak power: %.2f watts\n"+
				"Duration: %.2f seconds\n"+
				"CO2e: %.4f grams\n"+
				"Measurement method: %s%s",
			energy.JoulesToKWh(result.TotalEnergy),
			result.TotalEnergy,
			result.AveragePower,
			result.PeakPower,
			result.Duration.Seconds(),
			result.Co2e(co2ePerKWh),
			result.Method,
			degraded,
		), nil
	}
}

func applyLogLevel(level string) {
	switch config.LogLevel(level) {
	case config.LogLevelDebug:
		logger.SetLogLevel(logger.DebugLevel)
	case config.LogLevelInfo:
		logger.SetLogLevel(logger.InfoLevel)
	case config.LogLevelWarning:
		logger.SetLogLevel(logger.WarnLevel)
	case config.LogLevelError:
		logger.SetLogLevel(logger.ErrorLevel)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
