package migration

import (
	"context"

	"housecast/internal"
	"housecast/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the run ledger schema. Every statement is
// idempotent, so Run is safe on each start.
type MigrationRunner struct {
	version string
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner(logger *internal.Logger) *MigrationRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MigrationRunner{
		version: "1.0.0",
		logger:  logger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all ledger migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createBatchPartitionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create batch_partitions table")
	}

	if err := r.createValidationRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create validation_runs table")
	}

	r.createIndexes(ctx, db)
	r.logger.Debug("ledger schema at version %s", r.version)
	return nil
}

func (r *MigrationRunner) createBatchPartitionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS batch_partitions (
			run_id TEXT NOT NULL,
			period TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			output_path TEXT NOT NULL,
			checksum TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, period)
		)
	`)
	return err
}

func (r *MigrationRunner) createValidationRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_runs (
			run_id TEXT NOT NULL,
			path TEXT NOT NULL,
			passed INTEGER NOT NULL,
			total INTEGER NOT NULL,
			aborted BOOLEAN NOT NULL,
			message TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, path)
		)
	`)
	return err
}

// createIndexes only warns on failure; lookups still work without them
func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_partitions_period ON batch_partitions(period)",
		"CREATE INDEX IF NOT EXISTS idx_partitions_recorded_at ON batch_partitions(recorded_at)",
		"CREATE INDEX IF NOT EXISTS idx_validations_path ON validation_runs(path)",
		"CREATE INDEX IF NOT EXISTS idx_validations_recorded_at ON validation_runs(recorded_at)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			r.logger.Warn("failed to create index: %v", err)
		}
	}
}
