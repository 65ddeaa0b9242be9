package benchmark

import (
	"time"

	"codeberg.org/mutker/energictl/internal/energy"
	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/power"
)

// Config describes one measurement run. It is immutable once handed to the
// executor.
type Config struct {
	// Duration is the sampling window. Sampling always runs the window out
	// in full, even when the workload finishes earlier.
	Duration time.Duration
	// SampleInterval is the cadence of power readings. An interval at or
	// above Duration degenerates the run to the single mandatory sample at
	// offset zero.
	SampleInterval time.Duration
	// Source selects the power-reporting strategy; Auto resolves to a
	// concrete source at run start.
	Source power.Kind
}

// Validate checks the config invariants.
func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Duration <= 0 {
		return errFactory.WithData(errors.ErrInvalidDuration, c.Duration)
	}
	if c.SampleInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.SampleInterval)
	}

	return nil
}

// State tracks the executor through one run.
type State int

const (
	StateIdle State = iota
	StateSourceResolved
	StateSampling
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSourceResolved:
		return "source_resolved"
	case StateSampling:
		return "sampling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the immutable record of one completed measurement.
type Result struct {
	// TotalEnergy is in joules.
	TotalEnergy float64 `json:"energy_joules"`
	// AveragePower is in watts.
	AveragePower float64 `json:"average_power_watts"`
	// PeakPower is in watts.
	PeakPower float64 `json:"peak_power_watts"`
	// Duration is the wall time actually sampled.
	Duration time.Duration `json:"duration"`
	// Method is the concrete source used, never Auto. Relevant when Auto
	// resolution fell back.
	Method power.Kind `json:"measurement_method"`
	// SampleCount is the number of readings that survived gap filtering.
	SampleCount int `json:"sample_count"`
	// Degraded indicates the run produced no samples; TotalEnergy is zero
	// by definition rather than by measurement.
	Degraded bool `json:"degraded"`
}

// Co2e converts the result's total energy to grams of CO2-equivalent
// emissions. A non-positive intensity selects the global-average default.
func (r *Result) Co2e(gramsPerKWh float64) float64 {
	if gramsPerKWh <= 0 {
		gramsPerKWh = energy.DefaultCarbonIntensity
	}

	return energy.KWhToCo2e(energy.JoulesToKWh(r.TotalEnergy), gramsPerKWh)
}
