package ports

import (
	"context"

	"housecast/domain/dataset"
	"housecast/domain/expectation"
)

// ExpectationEngine evaluates declarative column rules against a frame.
// It returns exactly one result per rule, in rule order.
type ExpectationEngine interface {
	Evaluate(ctx context.Context, frame *dataset.Frame, rules []expectation.Rule) ([]expectation.Result, error)
}
