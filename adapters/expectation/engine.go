// Package expectation is the in-process rule evaluator behind ports.ExpectationEngine.
//
// Null policy: a missing cell counts as unexpected for range and length rules,
// except on columns that the same rule list also guards with a not-null rule.
// Those nulls are reported once, by the not-null rule. ElementCount always
// includes every row.
package expectation

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"housecast/adapters/datareadiness/coercer"
	"housecast/domain/core"
	"housecast/domain/dataset"
	domain "housecast/domain/expectation"
	"housecast/internal/errors"

	"gonum.org/v1/gonum/floats"
)

// Engine evaluates expectation rules row by row
type Engine struct {
	coercer *coercer.TypeCoercer
}

// NewEngine creates an engine using c to recognise nulls and numbers
func NewEngine(c *coercer.TypeCoercer) *Engine {
	if c == nil {
		c = coercer.Default
	}
	return &Engine{coercer: c}
}

// Evaluate runs every rule, in order, and never stops early on failure
func (e *Engine) Evaluate(ctx context.Context, frame *dataset.Frame, rules []domain.Rule) ([]domain.Result, error) {
	guarded := domain.NotNullColumns(rules)

	results := make([]domain.Result, 0, len(rules))
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		values, err := frame.Column(rule.Column)
		if err != nil {
			if core.IsMissingColumnError(err) {
				results = append(results, domain.Result{Rule: rule, Exception: err.Error()})
				continue
			}
			return nil, err
		}

		var res domain.Result
		switch rule.Kind {
		case domain.KindNotNull:
			res = e.notNull(rule, values)
		case domain.KindBetween:
			res = e.between(rule, values, guarded[rule.Column])
		case domain.KindLengthEquals:
			res = e.lengthEquals(rule, values, guarded[rule.Column])
		default:
			appErr := errors.InvalidInput(fmt.Sprintf("cannot evaluate %s", rule))
			appErr.Cause = core.ErrUnknownRule
			return nil, appErr
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) notNull(rule domain.Rule, values []string) domain.Result {
	unexpected := 0
	for _, v := range values {
		if e.coercer.IsMissing(v) {
			unexpected++
		}
	}
	return counted(rule, len(values), unexpected)
}

func (e *Engine) between(rule domain.Rule, values []string, skipNulls bool) domain.Result {
	unexpected := 0
	parsed := make([]float64, 0, len(values))
	for _, v := range values {
		if e.coercer.IsMissing(v) {
			if !skipNulls {
				unexpected++
			}
			continue
		}
		n, ok := e.coercer.ParseNumber(v)
		if !ok {
			unexpected++
			continue
		}
		parsed = append(parsed, n)
		if (rule.Params.Min != nil && n < *rule.Params.Min) || (rule.Params.Max != nil && n > *rule.Params.Max) {
			unexpected++
		}
	}

	res := counted(rule, len(values), unexpected)
	if len(parsed) > 0 {
		res.ObservedValue = fmt.Sprintf("min=%s, max=%s", formatFloat(floats.Min(parsed)), formatFloat(floats.Max(parsed)))
	}
	return res
}

func (e *Engine) lengthEquals(rule domain.Rule, values []string, skipNulls bool) domain.Result {
	if rule.Params.Value == nil {
		return domain.Result{Rule: rule, Exception: "length rule declared without a value"}
	}
	want := *rule.Params.Value

	unexpected := 0
	for _, v := range values {
		if e.coercer.IsMissing(v) {
			if !skipNulls {
				unexpected++
			}
			continue
		}
		if utf8.RuneCountInString(v) != want {
			unexpected++
		}
	}
	return counted(rule, len(values), unexpected)
}

func counted(rule domain.Rule, elements, unexpected int) domain.Result {
	return domain.Result{
		Rule:            rule,
		Success:         unexpected == 0,
		ElementCount:    elements,
		UnexpectedCount: unexpected,
		HasCounts:       true,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
