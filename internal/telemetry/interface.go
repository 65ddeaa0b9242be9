package telemetry

import (
	"context"
	"time"
)

// Collector records completed measurement runs
type Collector interface {
	Record(ctx context.Context, record *RunRecord) error
	Close() error
}

// Repository defines the interface for run-history storage
type Repository interface {
	Record(record *RunRecord) error
	Close() error
}

// RunRecord is one completed measurement run
type RunRecord struct {
	Timestamp    time.Time
	Duration     time.Duration
	EnergyJoules float64
	AverageWatts float64
	PeakWatts    float64
	Method       string
	Co2eGrams    float64
	SampleCount  int
	Degraded     bool
}
