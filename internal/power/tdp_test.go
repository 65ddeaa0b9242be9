package power_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/energictl/internal/logger"
	"codeberg.org/mutker/energictl/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTdpProbeAlwaysSucceeds(t *testing.T) {
	logger.Init(false, false, true)
	t.Setenv(power.TDPWattsEnv, "")

	provider := power.NewTdpProvider(logger.Default(), power.WithCPUInfoPath("/nonexistent/cpuinfo"))
	assert.True(t, provider.Probe(), "the estimate is the guaranteed last resort")
}

func TestTdpEnvOverride(t *testing.T) {
	logger.Init(false, false, true)
	t.Setenv(power.TDPWattsEnv, "40")

	provider := power.NewTdpProvider(logger.Default())
	watts, err := provider.ReadInstantPower()
	require.NoError(t, err)
	// 40 W TDP scaled by the fixed utilization assumption.
	assert.InDelta(t, 28.0, watts, 1e-9)
}

func TestTdpModelLookup(t *testing.T) {
	logger.Init(false, false, true)
	t.Setenv(power.TDPWattsEnv, "")

	cpuinfo := filepath.Join(t.TempDir(), "cpuinfo")
	require.NoError(t, os.WriteFile(cpuinfo, []byte(
		"processor\t: 0\nmodel name\t: Intel(R) Core(TM) i7-8750H CPU @ 2.20GHz\n",
	), 0o600))

	provider := power.NewTdpProvider(logger.Default(), power.WithCPUInfoPath(cpuinfo))
	watts, err := provider.ReadInstantPower()
	require.NoError(t, err)
	// i7-8750H is a 45 W part.
	assert.InDelta(t, 45.0*0.7, watts, 1e-9)
}

func TestTdpUnknownModelUsesDefault(t *testing.T) {
	logger.Init(false, false, true)
	t.Setenv(power.TDPWattsEnv, "")

	cpuinfo := filepath.Join(t.TempDir(), "cpuinfo")
	require.NoError(t, os.WriteFile(cpuinfo, []byte(
		"model name\t: Intel(R) Xeon(R) CPU Z9999X @ 9.99GHz\n",
	), 0o600))

	provider := power.NewTdpProvider(logger.Default(), power.WithCPUInfoPath(cpuinfo))
	watts, err := provider.ReadInstantPower()
	require.NoError(t, err)
	assert.InDelta(t, 28.0*0.7, watts, 1e-9)
}

func TestTdpReadingIsStable(t *testing.T) {
	logger.Init(false, false, true)
	t.Setenv(power.TDPWattsEnv, "35")

	provider := power.NewTdpProvider(logger.Default())
	first, err := provider.ReadInstantPower()
	require.NoError(t, err)
	second, err := provider.ReadInstantPower()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
