package power_test

import (
	"testing"

	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	kind      power.Kind
	available bool
	watts     float64
}

func (s *stubProvider) Kind() power.Kind { return s.kind }
func (s *stubProvider) Probe() bool      { return s.available }

func (s *stubProvider) ReadInstantPower() (float64, error) {
	return s.watts, nil
}

func TestResolveAutoPrefersRapl(t *testing.T) {
	providers := []power.Provider{
		&stubProvider{kind: power.Rapl, available: true, watts: 12},
		&stubProvider{kind: power.Acpi, available: true, watts: 8},
		&stubProvider{kind: power.TdpEstimate, available: true, watts: 20},
	}

	resolved, err := power.Resolve(power.Auto, providers)
	require.NoError(t, err)
	assert.Equal(t, power.Rapl, resolved.Kind())
}

func TestResolveAutoFallsBackToEstimate(t *testing.T) {
	providers := []power.Provider{
		&stubProvider{kind: power.Rapl, available: false},
		&stubProvider{kind: power.Acpi, available: false},
		&stubProvider{kind: power.TdpEstimate, available: true, watts: 20},
	}

	resolved, err := power.Resolve(power.Auto, providers)
	require.NoError(t, err)
	assert.Equal(t, power.TdpEstimate, resolved.Kind())
}

func TestResolveAutoSkipsToMeter(t *testing.T) {
	providers := []power.Provider{
		&stubProvider{kind: power.Rapl, available: false},
		&stubProvider{kind: power.Acpi, available: true, watts: 8},
		&stubProvider{kind: power.TdpEstimate, available: true, watts: 20},
	}

	resolved, err := power.Resolve(power.Auto, providers)
	require.NoError(t, err)
	assert.Equal(t, power.Acpi, resolved.Kind())
}

func TestResolveExplicitUnavailable(t *testing.T) {
	providers := []power.Provider{
		&stubProvider{kind: power.Rapl, available: false},
		&stubProvider{kind: power.TdpEstimate, available: true, watts: 20},
	}

	// An explicit selection must not silently fall back.
	_, err := power.Resolve(power.Rapl, providers)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, power.ErrSourceUnavailable))
}

func TestResolveExplicitMissingProvider(t *testing.T) {
	_, err := power.Resolve(power.Acpi, []power.Provider{
		&stubProvider{kind: power.TdpEstimate, available: true},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, power.ErrSourceUnavailable))
}
