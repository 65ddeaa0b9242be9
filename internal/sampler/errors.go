package sampler

import "codeberg.org/mutker/energictl/internal/errors"

const (
	// ErrPersistentReadFailure indicates the provider stopped producing
	// readings entirely; a run cannot continue on gaps alone.
	ErrPersistentReadFailure = errors.ErrorCode("sampler_persistent_read_failure")
)
