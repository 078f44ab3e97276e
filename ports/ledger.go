package ports

import (
	"context"
	"time"

	"housecast/domain/core"
)

// PartitionRecord describes one written monthly prediction file
type PartitionRecord struct {
	RunID      core.RunID    `db:"run_id"`
	Period     string        `db:"period"`
	RowCount   int           `db:"row_count"`
	OutputPath string        `db:"output_path"`
	Checksum   core.Checksum `db:"checksum"`
	RecordedAt time.Time     `db:"recorded_at"`
}

// ValidationRecord summarises one split's data quality outcome
type ValidationRecord struct {
	RunID      core.RunID `db:"run_id"`
	Path       string     `db:"path"`
	Passed     int        `db:"passed"`
	Total      int        `db:"total"`
	Aborted    bool       `db:"aborted"`
	Message    string     `db:"message"`
	RecordedAt time.Time  `db:"recorded_at"`
}

// RunLedger keeps an audit trail of batch and validation runs
type RunLedger interface {
	RecordPartition(ctx context.Context, rec PartitionRecord) error
	RecordValidation(ctx context.Context, rec ValidationRecord) error
	Close() error
}
