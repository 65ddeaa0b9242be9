package energy

import (
	"sort"
	"time"

	"codeberg.org/mutker/energictl/internal/sampler"
)

// Summary holds the reduced statistics of one sampling run.
type Summary struct {
	TotalJoules  float64
	AverageWatts float64
	PeakWatts    float64
	SampleCount  int

	// Degraded marks a run that produced no samples at all: the zero energy
	// figure is a statement of ignorance, not of consumption.
	Degraded bool
}

// Aggregate reduces a sample sequence to energy and power statistics.
// Total energy is computed by trapezoidal integration over the sample
// offsets, which stays unbiased across irregular gaps; samples are sorted
// by offset first so the result does not depend on append order.
//
// With a single sample the energy is that wattage held over the realized
// duration. With no samples the summary is zero and flagged degraded.
func Aggregate(samples []sampler.Sample, realized time.Duration) Summary {
	if len(samples) == 0 {
		return Summary{Degraded: true}
	}

	ordered := make([]sampler.Sample, len(samples))
	copy(ordered, samples)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Offset < ordered[j].Offset
	})

	var sum, peak float64
	for _, s := range ordered {
		sum += s.Watts
		if s.Watts > peak {
			peak = s.Watts
		}
	}
	average := sum / float64(len(ordered))

	if len(ordered) == 1 {
		return Summary{
			TotalJoules:  ordered[0].Watts * realized.Seconds(),
			AverageWatts: average,
			PeakWatts:    peak,
			SampleCount:  1,
		}
	}

	var joules float64
	for i := 1; i < len(ordered); i++ {
		dt := (ordered[i].Offset - ordered[i-1].Offset).Seconds()
		joules += (ordered[i].Watts + ordered[i-1].Watts) / 2 * dt
	}

	return Summary{
		TotalJoules:  joules,
		AverageWatts: average,
		PeakWatts:    peak,
		SampleCount:  len(ordered),
	}
}
