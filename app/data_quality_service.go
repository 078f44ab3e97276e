package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"housecast/adapters/datareadiness/coercer"
	"housecast/domain/core"
	"housecast/domain/dataset"
	"housecast/domain/expectation"
	"housecast/internal"
	"housecast/internal/errors"
	"housecast/ports"
)

// ZipcodeColumn is derived from "zipcode" before any rule runs
const ZipcodeColumn = "zipcode_str"

// DefaultDateRange bounds the dates accepted in raw housing splits
var DefaultDateRange = core.NewDateRange(
	core.MustDate(2010, time.January, 1),
	core.MustDate(2025, time.December, 31),
)

// SplitOutcome is the independent result of validating one split. Err is set
// when preprocessing aborted, when a collaborator failed, or when at least one
// expectation failed.
type SplitOutcome struct {
	Path   string
	Report *expectation.Report
	Err    error
}

// Failed reports whether the split did not pass cleanly
func (o SplitOutcome) Failed() bool {
	return o.Err != nil
}

// DataQualityService checks raw splits against the housing expectation battery
type DataQualityService struct {
	reader    ports.FrameReader
	engine    ports.ExpectationEngine
	rules     []expectation.Rule
	dateRange core.DateRange
	ledger    ports.RunLedger
	out       io.Writer
	logger    *internal.Logger
	coercer   *coercer.TypeCoercer
}

// NewDataQualityService wires the validator with the housing battery. out receives the report.
func NewDataQualityService(reader ports.FrameReader, engine ports.ExpectationEngine,
	ledger ports.RunLedger, out io.Writer, logger *internal.Logger) *DataQualityService {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataQualityService{
		reader:    reader,
		engine:    engine,
		rules:     expectation.HousingBattery(),
		dateRange: DefaultDateRange,
		ledger:    ledgerOrDiscard(ledger),
		out:       out,
		logger:    logger,
		coercer:   coercer.Default,
	}
}

// Validate runs preprocessing and the full rule battery against one split.
// A date problem aborts before any rule is evaluated. Rule failures are all
// printed first, then reported as an EXPECTATION_FAILURE error alongside the report.
func (s *DataQualityService) Validate(ctx context.Context, path string) (*expectation.Report, error) {
	frame, err := s.reader.Read(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}

	prepared, err := s.prepare(frame)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	results, err := s.engine.Evaluate(ctx, prepared, s.rules)
	if err != nil {
		return nil, err
	}

	report := &expectation.Report{Path: path, Results: results}
	s.printReport(report)
	s.logger.Debug("%s evaluated %d rules over %d rows", path, report.Total(), prepared.Len())

	if !report.Success() {
		return report, errors.ExpectationFailure(path, report.Failed(), report.Total())
	}
	return report, nil
}

// ValidateSplits validates each path independently, in order. A failure in
// one split never stops the next; callers decide how to aggregate.
func (s *DataQualityService) ValidateSplits(ctx context.Context, paths []string) []SplitOutcome {
	runID := core.NewRunID()
	outcomes := make([]SplitOutcome, 0, len(paths))

	for _, path := range paths {
		report, err := s.Validate(ctx, path)
		outcome := SplitOutcome{Path: path, Report: report, Err: err}
		outcomes = append(outcomes, outcome)

		if err != nil && report == nil {
			fmt.Fprintf(s.out, "\n%s: aborted: %v\n", path, err)
		}
		if err := s.ledger.RecordValidation(ctx, validationRecord(runID, outcome)); err != nil {
			s.logger.Warn("could not record validation of %s: %v", path, err)
		}
	}
	return outcomes
}

// AnyFailed reports whether at least one split failed or aborted
func AnyFailed(outcomes []SplitOutcome) bool {
	for _, o := range outcomes {
		if o.Failed() {
			return true
		}
	}
	return false
}

func validationRecord(runID core.RunID, o SplitOutcome) ports.ValidationRecord {
	rec := ports.ValidationRecord{RunID: runID, Path: o.Path}
	if o.Report != nil {
		rec.Passed = o.Report.Passed()
		rec.Total = o.Report.Total()
	} else {
		rec.Aborted = true
	}
	if o.Err != nil {
		rec.Message = o.Err.Error()
	}
	return rec
}

// prepare normalizes date and derives zipcode_str. Nothing is evaluated if it fails.
func (s *DataQualityService) prepare(frame *dataset.Frame) (*dataset.Frame, error) {
	rawDates, err := frame.Column("date")
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataFormat, err)
	}

	dates := make([]string, len(rawDates))
	missing, firstMissing := 0, -1
	outside, firstOutside := 0, -1
	for i, v := range rawDates {
		t, ok := s.coercer.ParseDate(v)
		if !ok {
			missing++
			if firstMissing < 0 {
				firstMissing = i
			}
			continue
		}
		if !s.dateRange.Contains(t) {
			outside++
			if firstOutside < 0 {
				firstOutside = i
			}
		}
		dates[i] = t.Format("2006-01-02")
	}
	if missing > 0 {
		return nil, errors.RangeViolation(fmt.Sprintf("Invalid or missing dates: %d row(s), first at row %d (%q)",
			missing, firstMissing, rawDates[firstMissing]))
	}
	if outside > 0 {
		return nil, errors.RangeViolation(fmt.Sprintf("Dates out of expected range: %d row(s) outside [%s, %s], first at row %d (%s)",
			outside, s.dateRange.From.Format("2006-01-02"), s.dateRange.To.Format("2006-01-02"), firstOutside, dates[firstOutside]))
	}

	rawZips, err := frame.Column("zipcode")
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataFormat, err)
	}
	zips := make([]string, len(rawZips))
	for i, v := range rawZips {
		zips[i], _ = s.coercer.ZeroPad(v, 5)
	}

	prepared, err := frame.WithColumn("date", dates)
	if err != nil {
		return nil, err
	}
	return prepared.WithColumn(ZipcodeColumn, zips)
}

func (s *DataQualityService) printReport(report *expectation.Report) {
	fmt.Fprintf(s.out, "\n%s: %d/%d checks passed\n", report.Path, report.Passed(), report.Total())
	if report.Success() {
		fmt.Fprintln(s.out, "All checks passed!")
		return
	}

	fmt.Fprintln(s.out, "Failed expectations:")
	for _, r := range report.Failures() {
		fmt.Fprintf(s.out, "  - %s on column '%s' with params: %s\n", r.Rule.Kind, r.Rule.Column, r.Rule.Params)
		if r.ObservedValue != "" {
			fmt.Fprintf(s.out, "    Observed: %s\n", r.ObservedValue)
		}
		if r.HasCounts {
			fmt.Fprintf(s.out, "    Unexpected count: %d/%d\n", r.UnexpectedCount, r.ElementCount)
		}
		if r.Exception != "" {
			fmt.Fprintf(s.out, "    Exception: %s\n", r.Exception)
		}
	}
}
