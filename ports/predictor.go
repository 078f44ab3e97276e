package ports

import (
	"context"

	"housecast/domain/dataset"
)

// Predictor produces a prediction table for a group of input rows.
// Output schema belongs to the implementation.
type Predictor interface {
	Predict(ctx context.Context, rows *dataset.Frame) (*dataset.Frame, error)
}
