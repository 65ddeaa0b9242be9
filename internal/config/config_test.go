package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/energictl/internal/config"
	"codeberg.org/mutker/energictl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "energictl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Point at a nonexistent file so a host /etc/energictl.toml cannot leak in.
	t.Setenv("ENERGICTL_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := config.Load([]string{"--", "sleep", "1"})
	require.NoError(t, err)

	assert.Equal(t, 1*time.Second, cfg.Duration)
	assert.Equal(t, 100*time.Millisecond, cfg.Interval)
	assert.Equal(t, "auto", cfg.Source)
	assert.InDelta(t, 436.0, cfg.Co2ePerKWh, 1e-9)
	assert.Equal(t, "human", cfg.Format)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.Telemetry)
	assert.Equal(t, []string{"sleep", "1"}, cfg.Command)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
duration = "5s"
interval = "250ms"
source = "tdp"
co2e_per_kwh = 50.0
format = "json"
log_level = "debug"
`)
	t.Setenv("ENERGICTL_CONFIG", path)

	cfg, err := config.Load([]string{"stress"})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Duration)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, "tdp", cfg.Source)
	assert.InDelta(t, 50.0, cfg.Co2ePerKWh, 1e-9)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `
duration = "5s"
source = "tdp"
format = "json"
`)
	t.Setenv("ENERGICTL_CONFIG", path)

	cfg, err := config.Load([]string{"-d", "2s", "-f", "csv", "--co2e-per-kwh", "100", "stress"})
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Duration, "flag wins over file")
	assert.Equal(t, "csv", cfg.Format)
	assert.InDelta(t, 100.0, cfg.Co2ePerKWh, 1e-9)
	assert.Equal(t, "tdp", cfg.Source, "file value survives when the flag is unset")
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("ENERGICTL_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	testCases := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"zero duration", []string{"-d", "0s", "cmd"}, errors.ErrInvalidDuration},
		{"negative interval", []string{"-i", "-10ms", "cmd"}, errors.ErrInvalidInterval},
		{"unknown format", []string{"-f", "xml", "cmd"}, errors.ErrInvalidConfig},
		{"unknown log level", []string{"--log-level", "loud", "cmd"}, errors.ErrInvalidLogLevel},
		{"telemetry without database", []string{"--telemetry", "cmd"}, errors.ErrInvalidConfig},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(tc.args)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code))
		})
	}
}

func TestLoadUnknownSource(t *testing.T) {
	t.Setenv("ENERGICTL_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	_, err := config.Load([]string{"-m", "psychic", "cmd"})
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfigFile(t, `duration = [not toml`)
	t.Setenv("ENERGICTL_CONFIG", path)

	_, err := config.Load([]string{"cmd"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrReadConfig))
}

func TestLogLevelValidation(t *testing.T) {
	for _, level := range []string{"debug", "info", "warning", "error"} {
		assert.True(t, config.LogLevel(level).IsValid(), level)
	}
	assert.False(t, config.LogLevel("chatty").IsValid())
}
