// Package ledger persists batch and validation run outcomes.
package ledger

import (
	"context"
	"time"

	"housecast/domain/core"
	"housecast/internal/errors"
	"housecast/internal/migration"
	"housecast/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLLedger implements ports.RunLedger on postgres or sqlite3
type SQLLedger struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open connects with driver ("postgres" or "sqlite3") and ensures the schema exists
func Open(ctx context.Context, driver, dsn string) (*SQLLedger, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s ledger", driver)
	}
	if err := migration.NewRunner(nil).Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to migrate %s ledger", driver)
	}
	return NewSQLLedger(db), nil
}

// NewSQLLedger wraps an existing connection; callers own schema setup
func NewSQLLedger(db *sqlx.DB) *SQLLedger {
	return &SQLLedger{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// RecordPartition stores one written prediction file, replacing a previous
// record for the same run and period
func (l *SQLLedger) RecordPartition(ctx context.Context, rec ports.PartitionRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = l.now()
	}
	if _, err := l.db.ExecContext(ctx, l.db.Rebind(`DELETE FROM batch_partitions WHERE run_id = ? AND period = ?`),
		rec.RunID, rec.Period); err != nil {
		return errors.Wrap(err, "failed to clear partition record")
	}
	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO batch_partitions (run_id, period, row_count, output_path, checksum, recorded_at)
		VALUES (:run_id, :period, :row_count, :output_path, :checksum, :recorded_at)`, rec)
	if err != nil {
		return errors.Wrap(err, "failed to record partition")
	}
	return nil
}

// RecordValidation stores one split's validation outcome
func (l *SQLLedger) RecordValidation(ctx context.Context, rec ports.ValidationRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = l.now()
	}
	if _, err := l.db.ExecContext(ctx, l.db.Rebind(`DELETE FROM validation_runs WHERE run_id = ? AND path = ?`),
		rec.RunID, rec.Path); err != nil {
		return errors.Wrap(err, "failed to clear validation record")
	}
	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO validation_runs (run_id, path, passed, total, aborted, message, recorded_at)
		VALUES (:run_id, :path, :passed, :total, :aborted, :message, :recorded_at)`, rec)
	if err != nil {
		return errors.Wrap(err, "failed to record validation")
	}
	return nil
}

// Partitions lists a run's partition records ordered by period
func (l *SQLLedger) Partitions(ctx context.Context, runID core.RunID) ([]ports.PartitionRecord, error) {
	var recs []ports.PartitionRecord
	err := l.db.SelectContext(ctx, &recs, l.db.Rebind(`
		SELECT run_id, period, row_count, output_path, checksum, recorded_at
		FROM batch_partitions WHERE run_id = ? ORDER BY period`), runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list partitions")
	}
	return recs, nil
}

// Validations lists a run's validation records ordered by path
func (l *SQLLedger) Validations(ctx context.Context, runID core.RunID) ([]ports.ValidationRecord, error) {
	var recs []ports.ValidationRecord
	err := l.db.SelectContext(ctx, &recs, l.db.Rebind(`
		SELECT run_id, path, passed, total, aborted, message, recorded_at
		FROM validation_runs WHERE run_id = ? ORDER BY path`), runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list validations")
	}
	return recs, nil
}

// Close releases the connection pool
func (l *SQLLedger) Close() error {
	return l.db.Close()
}

// NopLedger discards every record; used when no ledger is configured
type NopLedger struct{}

func (NopLedger) RecordPartition(context.Context, ports.PartitionRecord) error   { return nil }
func (NopLedger) RecordValidation(context.Context, ports.ValidationRecord) error { return nil }
func (NopLedger) Close() error                                                    { return nil }

var (
	_ ports.RunLedger = (*SQLLedger)(nil)
	_ ports.RunLedger = NopLedger{}
)
