package sampler

import (
	"context"
	"time"

	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/logger"
	"codeberg.org/mutker/energictl/internal/power"
)

// maxConsecutiveReadFailures is the tolerance for back-to-back failed reads
// before the run is aborted with a source error. Isolated failures are
// recorded as gaps and skipped.
const maxConsecutiveReadFailures = 5

// Sample is one power reading, stamped with its monotonic offset from
// sampling start. Samples are produced only by the Sampler and are never
// mutated afterwards.
type Sample struct {
	Offset time.Duration
	Watts  float64
}

// Sampler drives a resolved provider at a fixed cadence for a bounded window.
type Sampler struct {
	provider power.Provider
	interval time.Duration
	window   time.Duration
	log      logger.Logger
}

func New(provider power.Provider, interval, window time.Duration, log logger.Logger) *Sampler {
	return &Sampler{
		provider: provider,
		interval: interval,
		window:   window,
		log:      log,
	}
}

// Run collects samples until the window elapses or ctx is cancelled.
// The first sample is taken immediately at offset zero so short runs are not
// systematically undercounted. On cancellation the samples gathered so far
// are returned along with ctx.Err().
func (s *Sampler) Run(ctx context.Context) ([]Sample, error) {
	errFactory := errors.New()

	start := time.Now()
	deadline := start.Add(s.window)

	samples := make([]Sample, 0, s.window/s.interval+1)
	consecutiveFailures := 0

	take := func() error {
		watts, err := s.provider.ReadInstantPower()
		if err != nil {
			consecutiveFailures++
			s.log.Debug().
				Err(err).
				Int("consecutive_failures", consecutiveFailures).
				Msg("Power read failed, recording gap")
			if consecutiveFailures >= maxConsecutiveReadFailures {
				return errFactory.Wrap(ErrPersistentReadFailure, err)
			}
			return nil
		}

		consecutiveFailures = 0
		if watts < 0 {
			watts = 0
		}
		samples = append(samples, Sample{Offset: time.Since(start), Watts: watts})

		return nil
	}

	// Sample at t=0 before waiting out the first interval.
	if err := take(); err != nil {
		return nil, err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	window := time.NewTimer(time.Until(deadline))
	defer window.Stop()

	for {
		select {
		case <-ctx.Done():
			return samples, ctx.Err()
		case <-window.C:
			return samples, nil
		case <-ticker.C:
			if err := take(); err != nil {
				return nil, err
			}
		}
	}
}
