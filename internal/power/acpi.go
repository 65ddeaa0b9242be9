package power

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/logger"
)

const (
	defaultPowerSupplyPath = "/sys/class/power_supply"
	microwattsPerWatt      = 1_000_000.0
)

// acpiProvider sums the reported draw of all battery and AC power supplies.
// Supplies expose either power_now (µW) directly or voltage_now (µV) and
// current_now (µA) to multiply.
type acpiProvider struct {
	basePath string
	supplies []string
	log      logger.Logger
}

type AcpiOption func(*acpiProvider)

// WithPowerSupplyPath overrides the power_supply sysfs directory (for testing).
func WithPowerSupplyPath(path string) AcpiOption {
	return func(p *acpiProvider) {
		p.basePath = path
	}
}

func NewAcpiProvider(log logger.Logger, opts ...AcpiOption) Provider {
	p := &acpiProvider{
		basePath: defaultPowerSupplyPath,
		log:      log,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (*acpiProvider) Kind() Kind {
	return Acpi
}

// Probe reports whether at least one battery or AC meter is present.
func (p *acpiProvider) Probe() bool {
	supplies, err := p.findSupplies()
	if err != nil || len(supplies) == 0 {
		return false
	}

	p.supplies = supplies

	return true
}

func (p *acpiProvider) ReadInstantPower() (float64, error) {
	errFactory := errors.New()

	if len(p.supplies) == 0 {
		supplies, err := p.findSupplies()
		if err != nil {
			return 0, errFactory.Wrap(ErrNoPowerSupplies, err)
		}
		if len(supplies) == 0 {
			return 0, errFactory.New(ErrNoPowerSupplies)
		}
		p.supplies = supplies
	}

	var totalMicrowatts float64
	read := 0

	for _, supply := range p.supplies {
		microwatts, ok := p.readSupplyPower(supply)
		if !ok {
			continue
		}
		totalMicrowatts += microwatts
		read++
	}

	if read == 0 {
		return 0, errFactory.WithData(ErrReadFailed, "no readable power supplies")
	}

	return totalMicrowatts / microwattsPerWatt, nil
}

// readSupplyPower returns the draw of a single supply in µW. It prefers the
// direct power_now value and falls back to voltage_now * current_now.
func (p *acpiProvider) readSupplyPower(supply string) (float64, bool) {
	base := filepath.Join(p.basePath, supply)

	if microwatts, ok := readSysfsValue(filepath.Join(base, "power_now")); ok {
		return microwatts, true
	}

	voltage, okV := readSysfsValue(filepath.Join(base, "voltage_now"))
	current, okC := readSysfsValue(filepath.Join(base, "current_now"))
	if !okV || !okC {
		return 0, false
	}

	// µV * µA / 1e6 = µW
	return voltage * current / microwattsPerWatt, true
}

// findSupplies lists BAT* and AC* entries under the power_supply directory.
func (p *acpiProvider) findSupplies() ([]string, error) {
	entries, err := os.ReadDir(p.basePath)
	if err != nil {
		return nil, err
	}

	var supplies []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "BAT") || strings.HasPrefix(name, "AC") {
			supplies = append(supplies, name)
		}
	}

	return supplies, nil
}

func readSysfsValue(path string) (float64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, false
	}

	return value, true
}
