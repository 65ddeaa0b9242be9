package telemetry

import (
	"database/sql"
	"os"
	"path/filepath"

	"codeberg.org/mutker/energictl/internal/errors"
	"codeberg.org/mutker/energictl/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db  *sql.DB
	log logger.Logger
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Telemetry repository initialized")

	return &repository{
		db:  db,
		log: log,
	}, nil
}

func (r *repository) Record(record *RunRecord) error {
	errFactory := errors.New()

	_, err := r.db.Exec(insertRunSQL,
		record.Timestamp.UnixMilli(),
		record.Duration.Milliseconds(),
		record.EnergyJoules,
		record.AverageWatts,
		record.PeakWatts,
		record.Method,
		record.Co2eGrams,
		int64(record.SampleCount),
		int64(boolToInt(record.Degraded)),
	)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	return nil
}

func (r *repository) Close() error {
	errFactory := errors.New()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	return nil
}
