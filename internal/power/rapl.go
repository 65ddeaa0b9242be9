package power

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/logger"
)

const (
	defaultRaplPath     = "/sys/class/powercap/intel-rapl/intel-rapl:0"
	energyCounterFile   = "energy_uj"
	maxEnergyRangeFile  = "max_energy_range_uj"
	microjoulesPerJoule = 1_000_000.0

	// Window for the priming read on the first sample. The counter is
	// cumulative, so instantaneous power needs two reads with a measurable
	// gap between them.
	raplPrimeWindow = 20 * time.Millisecond
)

// raplProvider derives instantaneous power from the delta between two
// consecutive reads of the cumulative package energy counter.
type raplProvider struct {
	basePath    string
	maxRange    uint64
	lastCounter uint64
	lastRead    time.Time
	primed      bool
	log         logger.Logger
}

type RaplOption func(*raplProvider)

// WithRaplPath overrides the powercap sysfs directory (for testing).
func WithRaplPath(path string) RaplOption {
	return func(p *raplProvider) {
		p.basePath = path
	}
}

func NewRaplProvider(log logger.Logger, opts ...RaplOption) Provider {
	p := &raplProvider{
		basePath: defaultRaplPath,
		log:      log,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (*raplProvider) Kind() Kind {
	return Rapl
}

// Probe reports whether the energy counter exists and is readable.
// Absence and insufficient privilege look the same here: unusable.
func (p *raplProvider) Probe() bool {
	_, err := p.readCounter()
	return err == nil
}

func (p *raplProvider) ReadInstantPower() (float64, error) {
	errFactory := errors.New()

	if !p.primed {
		if err := p.prime(); err != nil {
			return 0, err
		}
	}

	counter, err := p.readCounter()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	elapsed := now.Sub(p.lastRead).Seconds()
	if elapsed <= 0 {
		return 0, errFactory.New(ErrInvalidReading)
	}

	deltaMicrojoules, err := p.counterDelta(counter)
	p.lastCounter = counter
	p.lastRead = now
	if err != nil {
		return 0, err
	}

	return deltaMicrojoules / microjoulesPerJoule / elapsed, nil
}

// prime takes the initial counter reading and waits out a short window so
// the first instantaneous sample has a meaningful delta.
func (p *raplProvider) prime() error {
	counter, err := p.readCounter()
	if err != nil {
		return err
	}

	p.lastCounter = counter
	p.lastRead = time.Now()
	p.maxRange = p.readMaxRange()
	p.primed = true

	time.Sleep(raplPrimeWindow)

	return nil
}

// counterDelta computes the µJ consumed since the previous read, accounting
// for counter wraparound when the range is known.
func (p *raplProvider) counterDelta(counter uint64) (float64, error) {
	if counter >= p.lastCounter {
		return float64(counter - p.lastCounter), nil
	}

	if p.maxRange > p.lastCounter {
		return float64(p.maxRange - p.lastCounter + counter), nil
	}

	return 0, errors.New().New(ErrCounterRewound)
}

func (p *raplProvider) readCounter() (uint64, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(filepath.Join(p.basePath, energyCounterFile))
	if err != nil {
		return 0, errFactory.Wrap(ErrReadFailed, err)
	}

	counter, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, errFactory.Wrap(ErrInvalidReading, err)
	}

	return counter, nil
}

func (p *raplProvider) readMaxRange() uint64 {
	data, err := os.ReadFile(filepath.Join(p.basePath, maxEnergyRangeFile))
	if err != nil {
		return 0
	}

	maxRange, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}

	return maxRange
}
