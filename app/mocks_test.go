package app

import (
	"context"

	"housecast/domain/dataset"
	"housecast/domain/expectation"
	"housecast/ports"

	"github.com/stretchr/testify/mock"
)

type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, rows *dataset.Frame) (*dataset.Frame, error) {
	args := m.Called(ctx, rows)
	frame, _ := args.Get(0).(*dataset.Frame)
	return frame, args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordPartition(ctx context.Context, rec ports.PartitionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockLedger) RecordValidation(ctx context.Context, rec ports.ValidationRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockLedger) Close() error {
	return m.Called().Error(0)
}

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Evaluate(ctx context.Context, frame *dataset.Frame, rules []expectation.Rule) ([]expectation.Result, error) {
	args := m.Called(ctx, frame, rules)
	results, _ := args.Get(0).([]expectation.Result)
	return results, args.Error(1)
}

// echoPredictor returns its input plus a constant predicted_price column
type echoPredictor struct {
	calls int
}

func (p *echoPredictor) Predict(_ context.Context, rows *dataset.Frame) (*dataset.Frame, error) {
	p.calls++
	values := make([]string, rows.Len())
	for i := range values {
		values[i] = "100"
	}
	return rows.WithColumn(PredictionColumn, values)
}
