package power

import (
	_ "embed"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/logger"
	"github.com/jszwec/csvutil"
)

const (
	defaultCPUInfoPath = "/proc/cpuinfo"

	// Conservative laptop-class default when the CPU model is not in the
	// table, matching common mobile package TDPs.
	defaultTDPWatts = 28.0

	// Fixed utilization assumption applied to the TDP figure. A CPU-bound
	// workload rarely holds the package at its full rated TDP for the whole
	// sampling window.
	estimatedUtilization = 0.7

	// TDPWattsEnv overrides the detected TDP figure, mainly for testing.
	TDPWattsEnv = "ENERGICTL_TDP_WATTS"
)

//go:embed tdp_data.csv
var tdpData []byte

// tdpModel is one row of the embedded TDP table.
type tdpModel struct {
	Model    string  `csv:"model"`
	TDPWatts float64 `csv:"tdp_watts"`
}

var cpuModelRegex = []*regexp.Regexp{
	// Intel, e.g. "model name : Intel(R) Core(TM) i7-8750H CPU @ 2.20GHz"
	regexp.MustCompile(`(.)*Intel(.)*( [-a-zA-Z0-9]+[0-9]+[A-Z]* )`),
	// Intel, e.g. "model name : 12th Gen Intel(R) Core(TM) i7-12700H"
	regexp.MustCompile(`(.)*Intel(.)*( [-a-zA-Z0-9]+[0-9]+[A-Z]*)`),
	// AMD, e.g. "model name : AMD Ryzen 7 5800X 8-Core Processor"
	regexp.MustCompile(`(.)*AMD Ryzen [0-9] ([0-9]+[A-Z0-9]*)`),
}

// tdpProvider is the guaranteed last resort: a static thermal-design-power
// figure for the detected CPU, scaled by a fixed utilization assumption.
type tdpProvider struct {
	cpuInfoPath string
	log         logger.Logger

	once  sync.Once
	watts float64
}

type TdpOption func(*tdpProvider)

// WithCPUInfoPath overrides the cpuinfo location (for testing).
func WithCPUInfoPath(path string) TdpOption {
	return func(p *tdpProvider) {
		p.cpuInfoPath = path
	}
}

func NewTdpProvider(log logger.Logger, opts ...TdpOption) Provider {
	p := &tdpProvider{
		cpuInfoPath: defaultCPUInfoPath,
		log:         log,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (*tdpProvider) Kind() Kind {
	return TdpEstimate
}

// Probe always succeeds: the estimate needs no hardware support.
func (*tdpProvider) Probe() bool {
	return true
}

func (p *tdpProvider) ReadInstantPower() (float64, error) {
	p.once.Do(func() {
		p.watts = p.resolveWatts() * estimatedUtilization
	})

	return p.watts, nil
}

func (p *tdpProvider) resolveWatts() float64 {
	if env := os.Getenv(TDPWattsEnv); env != "" {
		if watts, err := strconv.ParseFloat(env, 64); err == nil && watts > 0 {
			return watts
		}
	}

	model, err := p.detectCPUModel()
	if err != nil {
		p.log.Debug().Err(err).Msg("CPU model detection failed, using default TDP")
		return defaultTDPWatts
	}

	watts, err := lookupTDP(model)
	if err != nil {
		p.log.Debug().Str("model", model).Msg("CPU model not in TDP table, using default")
		return defaultTDPWatts
	}

	p.log.Debug().Str("model", model).Float64("tdp_watts", watts).Msg("TDP resolved from table")

	return watts
}

func (p *tdpProvider) detectCPUModel() (string, error) {
	data, err := os.ReadFile(p.cpuInfoPath)
	if err != nil {
		return "", err
	}

	for _, re := range cpuModelRegex {
		matches := re.FindStringSubmatch(string(data))
		if len(matches) > 0 {
			return strings.TrimSpace(matches[len(matches)-1]), nil
		}
	}

	return "", errors.New().WithData(ErrInvalidReading, "no CPU model line matched")
}

func lookupTDP(model string) (float64, error) {
	var rows []tdpModel
	if err := csvutil.Unmarshal(tdpData, &rows); err != nil {
		return 0, err
	}

	for _, row := range rows {
		if strings.EqualFold(row.Model, model) {
			return row.TDPWatts, nil
		}
	}

	return 0, errors.New().WithData(ErrInvalidReading, model)
}
