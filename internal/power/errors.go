package power

import "codeberg.org/mutker/energictl/internal/errors"

const (
	// Resolution Errors
	ErrUnknownSource     = errors.ErrorCode("power_unknown_source")
	ErrSourceUnavailable = errors.ErrorCode("power_source_unavailable")

	// Reading Errors
	ErrReadFailed      = errors.ErrorCode("power_read_failed")
	ErrCounterRewound  = errors.ErrorCode("power_counter_rewound")
	ErrInvalidReading  = errors.ErrorCode("power_invalid_reading")
	ErrNoPowerSupplies = errors.ErrorCode("power_no_power_supplies")
)
