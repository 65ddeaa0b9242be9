package power

import (
	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/logger"
)

// fallbackOrder is the Auto resolution priority, most precise first.
// The TDP estimate closes the chain because its probe never fails.
var fallbackOrder = []Kind{Rapl, Acpi, TdpEstimate}

// DefaultProviders returns the concrete providers in fallback order.
func DefaultProviders(log logger.Logger) []Provider {
	return []Provider{
		NewRaplProvider(log),
		NewAcpiProvider(log),
		NewTdpProvider(log),
	}
}

// Resolve picks the provider for the requested kind. Auto walks the fallback
// chain and settles on the first provider whose probe succeeds; an explicit
// kind must probe successfully or the resolution fails outright, with no
// fallback. Resolution happens once per run, before sampling starts.
func Resolve(kind Kind, providers []Provider) (Provider, error) {
	errFactory := errors.New()

	if kind == Auto {
		for _, candidate := range fallbackOrder {
			provider := findByKind(providers, candidate)
			if provider == nil {
				continue
			}
			if provider.Probe() {
				return provider, nil
			}
		}
		return nil, errFactory.WithMessage(ErrSourceUnavailable, "no usable power source found")
	}

	provider := findByKind(providers, kind)
	if provider == nil {
		return nil, errFactory.WithData(ErrSourceUnavailable, kind.String())
	}
	if !provider.Probe() {
		return nil, errFactory.WithData(ErrSourceUnavailable, kind.String())
	}

	return provider, nil
}

func findByKind(providers []Provider, kind Kind) Provider {
	for _, provider := range providers {
		if provider.Kind() == kind {
			return provider
		}
	}

	return nil
}
