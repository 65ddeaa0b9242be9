package config

import (
	"os"
	"time"

	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/power"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultDuration   = 1 * time.Second
	defaultInterval   = 100 * time.Millisecond
	defaultCo2ePerKWh = 436.0
	defaultFormat     = "human"

	configEnvVar = "ENERGICTL_CONFIG"
)

type Config struct {
	// Measurement
	Duration   time.Duration `mapstructure:"duration"`
	Interval   time.Duration `mapstructure:"interval"`
	Source     string        `mapstructure:"source"`
	Co2ePerKWh float64       `mapstructure:"co2e_per_kwh"`

	// Output
	Format   string `mapstructure:"format"`
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`

	// Telemetry
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`

	// Command is the workload to execute, taken from positional arguments.
	Command []string `mapstructure:"-"`
}

// Load merges flags, an optional TOML config file and defaults, with flags
// taking precedence. The config file is looked up via the ENERGICTL_CONFIG
// environment variable, then /etc.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("energictl", pflag.ContinueOnError)
	flags.DurationP("duration", "d", defaultDuration, "Duration of the sampling window")
	flags.DurationP("interval", "i", defaultInterval, "Sampling interval")
	flags.StringP("source", "m", power.Auto.String(), "Power source (auto, rapl, acpi, tdp)")
	flags.Float64P("co2e-per-kwh", "c", defaultCo2ePerKWh, "Carbon intensity in grams CO2e per kWh")
	flags.StringP("format", "f", defaultFormat, "Output format (human, json, csv)")
	flags.String("log-level", "", "Log level (debug, info, warning, error)")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.Bool("telemetry", false, "Record results to the telemetry database")
	flags.String("database", "", "Path to the telemetry database")

	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("duration", defaultDuration)
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("source", power.Auto.String())
	v.SetDefault("co2e_per_kwh", defaultCo2ePerKWh)
	v.SetDefault("format", defaultFormat)
	v.SetDefault("log_level", DefaultLogLevel)

	if path := os.Getenv(configEnvVar); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("energictl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").
					WithData(err.Error())
			}
		}
	}

	// Explicitly set flags override file values.
	flags.Visit(func(f *pflag.Flag) {
		key := f.Name
		switch key {
		case "co2e-per-kwh":
			key = "co2e_per_kwh"
		case "log-level":
			key = "log_level"
		}
		v.Set(key, f.Value.String())
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.Command = flags.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Duration <= 0 {
		return errFactory.WithData(errors.ErrInvalidDuration, c.Duration)
	}
	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if _, err := power.ParseKind(c.Source); err != nil {
		return err
	}
	if !validFormat(c.Format) {
		return errFactory.WithData(errors.ErrInvalidConfig, c.Format)
	}
	if c.LogLevel != "" && !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without a database path")
	}

	return nil
}

func validFormat(format string) bool {
	switch format {
	case "human", "json", "csv":
		return true
	default:
		return false
	}
}
