package benchmark

import "codeberg.org/mutker/energictl/internal/errors"

const (
	// ErrSourceUnavailable mirrors the power package: an explicitly
	// requested source failed its probe; no fallback is attempted.
	ErrSourceUnavailable = errors.ErrorCode("power_source_unavailable")

	// ErrSourceReadFailure indicates the resolved provider stopped
	// producing readings during the run.
	ErrSourceReadFailure = errors.ErrorCode("benchmark_source_read_failure")

	// ErrWorkloadFailed propagates a workload error as the run's terminal
	// error; partial samples are discarded.
	ErrWorkloadFailed = errors.ErrorCode("benchmark_workload_failed")

	// ErrNilWorkload rejects a Measure call without a workload.
	ErrNilWorkload = errors.ErrorCode("benchmark_nil_workload")
)
