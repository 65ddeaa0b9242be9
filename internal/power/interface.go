package power

import (
	"strings"

	"codeberg.org/mutker/energictl/internal/errors"
)

// Provider is a single strategy for reading the current power draw.
// Probe must be cheap and side-effect free; it reports whether the
// mechanism is usable on this machine and never panics. ReadInstantPower
// returns a best-effort instantaneous reading in watts.
type Provider interface {
	Kind() Kind
	Probe() bool
	ReadInstantPower() (float64, error)
}

// Kind selects the hardware power-reporting strategy.
type Kind int

const (
	// Auto resolves to the first usable concrete kind at run start.
	Auto Kind = iota
	// Rapl reads the CPU package energy counters via powercap sysfs.
	Rapl
	// Acpi reads the platform battery/power-meter subsystem.
	Acpi
	// TdpEstimate is a static thermal-design-power estimate; it never fails.
	TdpEstimate
)

func (k Kind) String() string {
	switch k {
	case Auto:
		return "auto"
	case Rapl:
		return "rapl"
	case Acpi:
		return "acpi"
	case TdpEstimate:
		return "tdp"
	default:
		return "unknown"
	}
}

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return Auto, nil
	case "rapl":
		return Rapl, nil
	case "acpi":
		return Acpi, nil
	case "tdp":
		return TdpEstimate, nil
	default:
		return Auto, errors.New().WithData(ErrUnknownSource, s)
	}
}

// MarshalText implements encoding.TextMarshaler for JSON/CSV output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
