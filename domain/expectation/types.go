// Package expectation defines declarative column rules and their results.
package expectation

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the check a rule performs
type Kind string

const (
	KindNotNull      Kind = "expect_column_values_to_not_be_null"
	KindBetween      Kind = "expect_column_values_to_be_between"
	KindLengthEquals Kind = "expect_column_value_lengths_to_equal"
)

// Params are the non-column arguments of a rule. Nil bounds are open.
type Params struct {
	Min   *float64
	Max   *float64
	Value *int
}

// String renders the parameters as a kwargs-style mapping, e.g. {'min_value': 0, 'max_value': 2}
func (p Params) String() string {
	var parts []string
	if p.Min != nil {
		parts = append(parts, "'min_value': "+formatNumber(*p.Min))
	}
	if p.Max != nil {
		parts = append(parts, "'max_value': "+formatNumber(*p.Max))
	}
	if p.Value != nil {
		parts = append(parts, "'value': "+strconv.Itoa(*p.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Rule is one declared expectation against a single column
type Rule struct {
	Kind   Kind
	Column string
	Params Params
}

// String names the rule for logs, e.g. "expect_column_values_to_be_between(price)"
func (r Rule) String() string {
	return fmt.Sprintf("%s(%s)", r.Kind, r.Column)
}

// NotNull declares that every cell of column is present
func NotNull(column string) Rule {
	return Rule{Kind: KindNotNull, Column: column}
}

// Between declares min <= value <= max for every cell
func Between(column string, min, max float64) Rule {
	return Rule{Kind: KindBetween, Column: column, Params: Params{Min: &min, Max: &max}}
}

// AtLeast declares value >= min for every cell
func AtLeast(column string, min float64) Rule {
	return Rule{Kind: KindBetween, Column: column, Params: Params{Min: &min}}
}

// LengthEquals declares that every cell has exactly n characters
func LengthEquals(column string, n int) Rule {
	return Rule{Kind: KindLengthEquals, Column: column, Params: Params{Value: &n}}
}

// Result is the outcome of evaluating one rule
type Result struct {
	Rule            Rule
	Success         bool
	ObservedValue   string // empty when the engine has nothing to report
	ElementCount    int
	UnexpectedCount int
	HasCounts       bool
	Exception       string
}

// Report is the ordered set of results for one dataset, in declaration order
type Report struct {
	Path    string
	Results []Result
}

// Total returns the number of evaluated rules
func (r Report) Total() int {
	return len(r.Results)
}

// Passed counts successful rules
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// Failed counts unsuccessful rules
func (r Report) Failed() int {
	return r.Total() - r.Passed()
}

// Success reports whether every rule passed
func (r Report) Success() bool {
	return r.Failed() == 0
}

// Failures returns the failing results, keeping declaration order
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}
