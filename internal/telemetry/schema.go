package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/energictl/internal/errors"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS runs (
	       timestamp      INTEGER PRIMARY KEY,
	       duration_ms    INTEGER NOT NULL,
	       energy_joules  REAL NOT NULL CHECK (energy_joules >= 0),
	       average_watts  REAL NOT NULL CHECK (average_watts >= 0),
	       peak_watts     REAL NOT NULL CHECK (peak_watts >= 0),
	       method         TEXT NOT NULL,
	       co2e_grams     REAL NOT NULL CHECK (co2e_grams >= 0),
	       sample_count   INTEGER NOT NULL,
	       degraded       INTEGER NOT NULL CHECK (degraded IN (0, 1))
	   );`

	insertRunSQL = `
    INSERT INTO runs (
        timestamp, duration_ms,
        energy_joules, average_watts, peak_watts,
        method, co2e_grams, sample_count, degraded
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// InitSchema creates the run-history schema and records its version
func InitSchema(db *sql.DB) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if _, err := tx.Exec(`
        INSERT OR IGNORE INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	return nil
}
