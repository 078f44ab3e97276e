package app

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"housecast/adapters/datareadiness/coercer"
	"housecast/adapters/expectation"
	"housecast/adapters/tabular"
	"housecast/internal/errors"
	"housecast/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const splitHeader = "date,zipcode,price,median_sale_price,median_list_price,homes_sold,pending_sales," +
	"median_dom,avg_sale_to_list,city_full,Total Population,Median Age,Median Home Value\n"

func splitRow(date, zipcode, price string) string {
	return strings.Join([]string{date, zipcode, price, "450000", "460000", "12", "4", "30", "1.01", "Seattle", "750000", "37", "600000"}, ",") + "\n"
}

func writeSplit(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(splitHeader+strings.Join(rows, "")), 0o644))
	return path
}

func newQualityService(engine ports.ExpectationEngine, ledger ports.RunLedger, out *bytes.Buffer) *DataQualityService {
	return NewDataQualityService(tabular.NewDataReader(nil), engine, ledger, out, nil)
}

func realEngine() ports.ExpectationEngine {
	return expectation.NewEngine(coercer.Default)
}

func TestValidateAllChecksPass(t *testing.T) {
	path := writeSplit(t, t.TempDir(), "train.csv",
		splitRow("2020-01-31", "98101", "500000"),
		splitRow("2021-06-01", "501", "750000"),
	)
	var out bytes.Buffer

	report, err := newQualityService(realEngine(), nil, &out).Validate(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 13, report.Total())
	assert.True(t, report.Success())
	assert.Equal(t, "\n"+path+": 13/13 checks passed\nAll checks passed!\n", out.String())
}

func TestValidateReportsEveryFailureBeforeFailing(t *testing.T) {
	path := writeSplit(t, t.TempDir(), "eval.csv",
		splitRow("2020-01-31", "98101", "500"),
		splitRow("2020-02-29", "2134.0", "500000"),
	)
	var out bytes.Buffer

	report, err := newQualityService(realEngine(), nil, &out).Validate(context.Background(), path)
	require.Error(t, err)
	require.NotNil(t, report)

	assert.True(t, errors.HasCode(err, errors.CodeExpectationFailure))
	assert.Equal(t, path+": 2/13 expectations failed", err.Error())
	assert.Equal(t, 11, report.Passed())

	text := out.String()
	assert.Contains(t, text, path+": 11/13 checks passed")
	assert.Contains(t, text, "Failed expectations:")
	assert.Contains(t, text, "  - expect_column_values_to_be_between on column 'price' with params: {'min_value': 1000, 'max_value': 12000000}")
	assert.Contains(t, text, "    Observed: min=500, max=500000")
	assert.Contains(t, text, "    Unexpected count: 1/2")
	assert.Contains(t, text, "on column 'zipcode_str' with params: {'value': 5}")
	assert.NotContains(t, text, "All checks passed!")
}

func TestValidateMissingColumnIsReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holdout.csv")
	header := strings.Replace(splitHeader, ",Median Age", "", 1)
	row := strings.Join([]string{"2020-01-31", "98101", "500000", "450000", "460000", "12", "4", "30", "1.01", "Seattle", "750000", "600000"}, ",") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(header+row), 0o644))
	var out bytes.Buffer

	report, err := newQualityService(realEngine(), nil, &out).Validate(context.Background(), path)
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 12, report.Passed())
	assert.Contains(t, out.String(), "    Exception: ")
	assert.Contains(t, out.String(), "Median Age")
}

func TestValidateAbortsOnOutOfRangeDate(t *testing.T) {
	path := writeSplit(t, t.TempDir(), "train.csv",
		splitRow("2020-01-31", "98101", "500000"),
		splitRow("2009-12-31", "98101", "500000"),
	)
	engine := new(MockEngine)
	var out bytes.Buffer

	report, err := newQualityService(engine, nil, &out).Validate(context.Background(), path)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeRangeViolation))
	assert.Contains(t, err.Error(), "Dates out of expected range")
	assert.Contains(t, err.Error(), "first at row 1 (2009-12-31)")
	engine.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, out.String())
}

func TestValidateAbortsOnUnparseableDate(t *testing.T) {
	path := writeSplit(t, t.TempDir(), "train.csv",
		splitRow("", "98101", "500000"),
		splitRow("not-a-date", "98101", "500000"),
	)
	engine := new(MockEngine)

	_, err := newQualityService(engine, nil, &bytes.Buffer{}).Validate(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeRangeViolation))
	assert.Contains(t, err.Error(), `Invalid or missing dates: 2 row(s), first at row 0 ("")`)
	engine.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateAcceptsRangeBoundaries(t *testing.T) {
	path := writeSplit(t, t.TempDir(), "train.csv",
		splitRow("2010-01-01", "98101", "500000"),
		splitRow("2025-12-31 23:59:59", "98101", "500000"),
	)

	_, err := newQualityService(realEngine(), nil, &bytes.Buffer{}).Validate(context.Background(), path)
	assert.NoError(t, err)
}

func TestValidatePassesPreparedColumnsToEngine(t *testing.T) {
	path := writeSplit(t, t.TempDir(), "train.csv", splitRow("2020-01-31", "501", "500000"))

	engine := new(MockEngine)
	engine.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()

	report, err := newQualityService(engine, nil, &bytes.Buffer{}).Validate(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total())

	frame := engine.Calls[0].Arguments.Get(1)
	prepared, ok := frame.(interface{ Column(string) ([]string, error) })
	require.True(t, ok)
	zips, err := prepared.Column(ZipcodeColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"00501"}, zips)
}

func TestValidatePropagatesEngineError(t *testing.T) {
	path := writeSplit(t, t.TempDir(), "train.csv", splitRow("2020-01-31", "98101", "500000"))
	engineErr := stderrors.New("engine exploded")

	engine := new(MockEngine)
	engine.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return(nil, engineErr)

	report, err := newQualityService(engine, nil, &bytes.Buffer{}).Validate(context.Background(), path)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, engineErr)
}

func TestValidateSplitsContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	train := writeSplit(t, dir, "train.csv", splitRow("2020-01-31", "98101", "500"))
	eval := writeSplit(t, dir, "eval.csv", splitRow("2001-01-01", "98101", "500000"))
	holdout := writeSplit(t, dir, "holdout.csv", splitRow("2020-01-31", "98101", "500000"))
	missing := filepath.Join(dir, "nope.csv")

	ledger := new(MockLedger)
	ledger.On("RecordValidation", mock.Anything, mock.MatchedBy(func(r ports.ValidationRecord) bool {
		return r.Path == eval && r.Aborted && strings.Contains(r.Message, "Dates out of expected range")
	})).Return(nil).Once()
	ledger.On("RecordValidation", mock.Anything, mock.MatchedBy(func(r ports.ValidationRecord) bool {
		return r.Path == train && r.Passed == 12 && r.Total == 13 && !r.Aborted
	})).Return(nil).Once()
	ledger.On("RecordValidation", mock.Anything, mock.MatchedBy(func(r ports.ValidationRecord) bool {
		return r.Path == holdout && r.Passed == 13 && r.Message == ""
	})).Return(nil).Once()
	ledger.On("RecordValidation", mock.Anything, mock.MatchedBy(func(r ports.ValidationRecord) bool {
		return r.Path == missing && r.Aborted
	})).Return(stderrors.New("ledger offline")).Once()

	var out bytes.Buffer
	outcomes := newQualityService(realEngine(), ledger, &out).
		ValidateSplits(context.Background(), []string{train, eval, holdout, missing})
	ledger.AssertExpectations(t)

	require.Len(t, outcomes, 4)
	assert.True(t, outcomes[0].Failed())
	assert.NotNil(t, outcomes[0].Report)
	assert.True(t, outcomes[1].Failed())
	assert.Nil(t, outcomes[1].Report)
	assert.False(t, outcomes[2].Failed())
	assert.True(t, outcomes[3].Failed())
	assert.True(t, AnyFailed(outcomes))
	assert.False(t, AnyFailed(outcomes[2:3]))

	text := out.String()
	assert.Contains(t, text, eval+": aborted: ")
	assert.Contains(t, text, holdout+": 13/13 checks passed")

	runIDs := map[string]bool{}
	for _, call := range ledger.Calls {
		runIDs[call.Arguments.Get(1).(ports.ValidationRecord).RunID.String()] = true
	}
	assert.Len(t, runIDs, 1)
}
