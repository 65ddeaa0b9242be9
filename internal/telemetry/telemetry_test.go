package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/energictl/internal/logger"
	"codeberg.org/mutker/energictl/internal/telemetry"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *telemetry.RunRecord {
	return &telemetry.RunRecord{
		Timestamp:    time.Now(),
		Duration:     1 * time.Second,
		EnergyJoules: 42.5,
		AverageWatts: 42.5,
		PeakWatts:    55.0,
		Method:       "rapl",
		Co2eGrams:    0.005,
		SampleCount:  11,
		Degraded:     false,
	}
}

func TestDefaultConfigDisabled(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	assert.False(t, cfg.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidation(t *testing.T) {
	cfg := telemetry.Config{Enabled: true, DBPath: ""}
	assert.Error(t, cfg.Validate())

	cfg.DBPath = "/tmp/runs.db"
	assert.NoError(t, cfg.Validate())
}

func TestNoopCollectorWhenDisabled(t *testing.T) {
	logger.Init(false, false, true)

	collector, err := telemetry.NewService(telemetry.Config{Enabled: false}, logger.Default())
	require.NoError(t, err)

	require.NoError(t, collector.Record(context.Background(), testRecord()))
	require.NoError(t, collector.Close())
}

func TestRecordRoundTrip(t *testing.T) {
	logger.Init(false, false, true)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath}, logger.Default())
	require.NoError(t, err)

	record := testRecord()
	require.NoError(t, collector.Record(context.Background(), record))
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var (
		energy, avg, peak, co2e float64
		method                  string
		samples, degraded       int64
	)
	row := db.QueryRow("SELECT energy_joules, average_watts, peak_watts, method, co2e_grams, sample_count, degraded FROM runs")
	require.NoError(t, row.Scan(&energy, &avg, &peak, &method, &co2e, &samples, &degraded))

	assert.InDelta(t, record.EnergyJoules, energy, 1e-9)
	assert.InDelta(t, record.AverageWatts, avg, 1e-9)
	assert.InDelta(t, record.PeakWatts, peak, 1e-9)
	assert.Equal(t, record.Method, method)
	assert.InDelta(t, record.Co2eGrams, co2e, 1e-9)
	assert.EqualValues(t, record.SampleCount, samples)
	assert.EqualValues(t, 0, degraded)
}

func TestRecordNil(t *testing.T) {
	logger.Init(false, false, true)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath}, logger.Default())
	require.NoError(t, err)
	defer collector.Close()

	assert.Error(t, collector.Record(context.Background(), nil))
}

func TestRecordCancelledContext(t *testing.T) {
	logger.Init(false, false, true)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath}, logger.Default())
	require.NoError(t, err)
	defer collector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, collector.Record(ctx, testRecord()))
}

func TestSchemaVersionRecorded(t *testing.T) {
	logger.Init(false, false, true)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath}, logger.Default())
	require.NoError(t, err)
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&version))
	assert.Equal(t, telemetry.SchemaVersion, version)
}
