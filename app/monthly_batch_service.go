package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"housecast/adapters/datareadiness/coercer"
	"housecast/domain/core"
	"housecast/domain/dataset"
	"housecast/internal"
	"housecast/internal/errors"
	"housecast/ports"

	"github.com/montanaflynn/stats"
)

// PredictionColumn is summarised per partition when a predictor emits it
const PredictionColumn = "predicted_price"

// BatchConfig locates the holdout input and the predictions directory
type BatchConfig struct {
	HoldoutPath string
	OutputDir   string
}

// PartitionOutput describes one written monthly prediction file
type PartitionOutput struct {
	Key            dataset.PartitionKey
	Rows           int
	Path           string
	Checksum       core.Checksum
	MeanPrediction *float64
}

// BatchResult is the outcome of one monthly batch run
type BatchResult struct {
	RunID      core.RunID
	Partitions []PartitionOutput
	Combined   *dataset.Frame
}

// MonthlyBatchService runs inference one calendar month at a time
type MonthlyBatchService struct {
	config    BatchConfig
	reader    ports.FrameReader
	writer    ports.FrameWriter
	predictor ports.Predictor
	ledger    ports.RunLedger
	out       io.Writer
	logger    *internal.Logger
	coercer   *coercer.TypeCoercer
}

// NewMonthlyBatchService wires the batch runner. out receives the progress lines.
func NewMonthlyBatchService(config BatchConfig, reader ports.FrameReader, writer ports.FrameWriter,
	predictor ports.Predictor, ledger ports.RunLedger, out io.Writer, logger *internal.Logger) *MonthlyBatchService {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MonthlyBatchService{
		config:    config,
		reader:    reader,
		writer:    writer,
		predictor: predictor,
		ledger:    ledgerOrDiscard(ledger),
		out:       out,
		logger:    logger,
		coercer:   coercer.Default,
	}
}

// OutputPath is the file a partition's predictions are written to
func (s *MonthlyBatchService) OutputPath(key dataset.PartitionKey) string {
	return filepath.Join(s.config.OutputDir, "preds_"+key.Suffix()+".csv")
}

// Run loads the holdout data, predicts each (year, month) group in ascending
// order, writes one file per group and returns the concatenated predictions.
// Predictor errors are returned as-is.
func (s *MonthlyBatchService) Run(ctx context.Context) (*BatchResult, error) {
	runID := core.NewRunID()
	logger := s.logger.With("run_id", runID.String())
	start := time.Now()

	frame, err := s.reader.Read(ctx, s.config.HoldoutPath)
	if err != nil {
		return nil, errors.Wrapf(err, "load holdout %s", s.config.HoldoutPath)
	}
	if frame.Len() == 0 {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDataFormat, core.ErrNoRows), s.config.HoldoutPath)
	}

	dates, err := s.parseDates(frame)
	if err != nil {
		return nil, errors.Wrapf(err, "load holdout %s", s.config.HoldoutPath)
	}

	partitions, err := dataset.PartitionByMonth(frame, dates)
	if err != nil {
		return nil, err
	}
	logger.Info("partitioned %d rows into %d monthly groups", frame.Len(), len(partitions))

	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", s.config.OutputDir)
	}

	result := &BatchResult{RunID: runID}
	outputs := make([]*dataset.Frame, 0, len(partitions))
	for _, part := range partitions {
		fmt.Fprintf(s.out, "Running predictions for %s (%d rows)\n", part.Key, part.Frame.Len())

		preds, err := s.predictor.Predict(ctx, part.Frame)
		if err != nil {
			logger.Error("prediction failed for %s: %v", part.Key, err)
			return nil, err
		}

		output, err := s.persist(ctx, runID, part.Key, preds)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(s.out, "Saved predictions to %s\n", output.Path)

		result.Partitions = append(result.Partitions, output)
		outputs = append(outputs, preds)
	}

	result.Combined = dataset.Concat(outputs...)
	logger.Info("batch inference finished in %s (%d prediction rows)", time.Since(start).Round(time.Millisecond), result.Combined.Len())
	return result, nil
}

// parseDates requires every row to carry a parseable date
func (s *MonthlyBatchService) parseDates(frame *dataset.Frame) ([]time.Time, error) {
	raw, err := frame.Column("date")
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataFormat, err)
	}
	dates := make([]time.Time, len(raw))
	for i, v := range raw {
		t, ok := s.coercer.ParseDate(v)
		if !ok {
			return nil, errors.DataFormat(fmt.Sprintf("row %d: unparseable date %q", i, v))
		}
		dates[i] = t
	}
	return dates, nil
}

func (s *MonthlyBatchService) persist(ctx context.Context, runID core.RunID, key dataset.PartitionKey, preds *dataset.Frame) (PartitionOutput, error) {
	path := s.OutputPath(key)
	if err := s.writer.Write(ctx, path, preds); err != nil {
		return PartitionOutput{}, errors.Wrapf(err, "write predictions for %s", key)
	}

	sum, err := core.FileChecksum(path)
	if err != nil {
		return PartitionOutput{}, errors.Wrapf(err, "checksum %s", path)
	}

	output := PartitionOutput{
		Key:            key,
		Rows:           preds.Len(),
		Path:           path,
		Checksum:       sum,
		MeanPrediction: s.meanPrediction(preds),
	}
	if output.MeanPrediction != nil {
		s.logger.Debug("%s mean %s = %.2f", key, PredictionColumn, *output.MeanPrediction)
	}

	if err := s.ledger.RecordPartition(ctx, ports.PartitionRecord{
		RunID:      runID,
		Period:     key.String(),
		RowCount:   output.Rows,
		OutputPath: path,
		Checksum:   sum,
	}); err != nil {
		return PartitionOutput{}, errors.Wrapf(err, "record partition %s", key)
	}
	return output, nil
}

func (s *MonthlyBatchService) meanPrediction(preds *dataset.Frame) *float64 {
	values, err := preds.Column(PredictionColumn)
	if err != nil {
		return nil
	}
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if n, ok := s.coercer.ParseNumber(v); ok {
			nums = append(nums, n)
		}
	}
	mean, err := stats.Mean(nums)
	if err != nil {
		return nil
	}
	return &mean
}
