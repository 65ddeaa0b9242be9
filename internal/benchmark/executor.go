package benchmark

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/energictl/internal/energy"
	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/logger"
	"codeberg.org/mutker/energictl/internal/power"
	"codeberg.org/mutker/energictl/internal/sampler"
)

// Executor orchestrates one measurement run: it resolves the configured
// power source, runs the sampler concurrently with the workload, joins both
// and assembles the result. Each Measure invocation is self-contained; no
// state is shared across runs.
type Executor struct {
	cfg       Config
	providers []power.Provider
	log       logger.Logger

	mu    sync.Mutex
	state State
}

type Option func(*Executor)

// WithProviders overrides the default provider set (for testing).
func WithProviders(providers []power.Provider) Option {
	return func(e *Executor) {
		e.providers = providers
	}
}

// WithLogger sets the logger used during the run.
func WithLogger(log logger.Logger) Option {
	return func(e *Executor) {
		e.log = log
	}
}

// New validates the config and constructs an executor. No I/O happens here;
// hardware is only touched when Measure resolves the source.
func New(cfg Config, opts ...Option) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		cfg:   cfg,
		log:   logger.Default(),
		state: StateIdle,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.providers == nil {
		e.providers = power.DefaultProviders(e.log)
	}

	return e, nil
}

// State returns the executor's current run state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

type samplerOutcome struct {
	samples []sampler.Sample
	elapsed time.Duration
	err     error
}

// Measure executes the workload exactly once while sampling power draw
// alongside it, and blocks until both have concluded. The sampling window is
// always run out in full: a workload that finishes early does not truncate
// it. Cancelling ctx stops sampling early and completes with the samples
// gathered so far. A workload error aborts the run; partial samples are
// discarded and no result is returned.
func (e *Executor) Measure(ctx context.Context, workload func() error) (*Result, error) {
	errFactory := errors.New()

	if workload == nil {
		return nil, errFactory.New(ErrNilWorkload)
	}

	provider, err := power.Resolve(e.cfg.Source, e.providers)
	if err != nil {
		e.setState(StateFailed)
		return nil, err
	}
	e.setState(StateSourceResolved)

	e.log.Debug().
		Str("requested", e.cfg.Source.String()).
		Str("resolved", provider.Kind().String()).
		Dur("duration", e.cfg.Duration).
		Dur("interval", e.cfg.SampleInterval).
		Msg("Power source resolved")

	samplerCtx, cancelSampler := context.WithCancel(ctx)
	defer cancelSampler()

	outcome := make(chan samplerOutcome, 1)
	smp := sampler.New(provider, e.cfg.SampleInterval, e.cfg.Duration, e.log)

	e.setState(StateSampling)
	go func() {
		start := time.Now()
		samples, err := smp.Run(samplerCtx)
		outcome <- samplerOutcome{
			samples: samples,
			elapsed: time.Since(start),
			err:     err,
		}
	}()

	workloadErr := workload()
	if workloadErr != nil {
		// Discard whatever the sampler has gathered; a partial result on a
		// failed workload would be worse than no result.
		cancelSampler()
		<-outcome
		e.setState(StateFailed)
		return nil, errFactory.Wrap(ErrWorkloadFailed, workloadErr)
	}

	out := <-outcome
	if out.err != nil && !errors.Is(out.err, context.Canceled) && !errors.Is(out.err, context.DeadlineExceeded) {
		e.setState(StateFailed)
		return nil, errFactory.Wrap(ErrSourceReadFailure, out.err)
	}

	summary := energy.Aggregate(out.samples, out.elapsed)
	if summary.Degraded {
		e.log.Warn().
			Str("source", provider.Kind().String()).
			Msg("Run produced no samples, reporting degraded zero-energy result")
	}

	e.setState(StateCompleted)

	return &Result{
		TotalEnergy:  summary.TotalJoules,
		AveragePower: summary.AverageWatts,
		PeakPower:    summary.PeakWatts,
		Duration:     out.elapsed,
		Method:       provider.Kind(),
		SampleCount:  summary.SampleCount,
		Degraded:     summary.Degraded,
	}, nil
}
