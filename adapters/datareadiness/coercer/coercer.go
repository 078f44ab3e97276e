package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TypeCoercer turns raw cell text into typed values with fixed, versioned rules
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// CoercionConfig defines which tokens mean "missing" and which date layouts are accepted
type CoercionConfig struct {
	MissingTokens []string `json:"missing_tokens"`
	DateLayouts   []string `json:"date_layouts"`
}

// DefaultCoercionConfig mirrors the NA tokens and date shapes seen in the raw exports
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		MissingTokens: []string{
			"", "#N/A", "#N/A N/A", "#NA", "-NaN", "-nan", "<NA>", "N/A",
			"NA", "NULL", "NaN", "None", "n/a", "nan", "null",
		},
		DateLayouts: []string{
			"2006-01-02",
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006/01/02",
			"01/02/2006",
			"02-Jan-2006",
		},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]struct{}, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[tok] = struct{}{}
	}
	return &TypeCoercer{config: config, missing: missing}
}

// Default is the shared coercer used by the readers and the expectation engine
var Default = NewTypeCoercer(DefaultCoercionConfig())

// IsMissing reports whether a raw cell represents a null value
func (c *TypeCoercer) IsMissing(raw string) bool {
	_, ok := c.missing[strings.TrimSpace(raw)]
	return ok
}

// ParseNumber parses a cell as a finite float. Missing and non-numeric cells return false.
func (c *TypeCoercer) ParseNumber(raw string) (float64, bool) {
	if c.IsMissing(raw) {
		return 0, false
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// ParseDate parses a cell against the configured layouts. Missing or unparseable cells return false.
func (c *TypeCoercer) ParseDate(raw string) (time.Time, bool) {
	if c.IsMissing(raw) {
		return time.Time{}, false
	}
	s := strings.TrimSpace(raw)
	for _, layout := range c.config.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ZeroPad left-pads a cell with zeros to width characters, keeping a leading
// sign in front. Cells already at or beyond width
// are returned unchanged. The boolean is false when the cell is missing.
func (c *TypeCoercer) ZeroPad(raw string, width int) (string, bool) {
	if c.IsMissing(raw) {
		return "", false
	}
	s := strings.TrimSpace(raw)

	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if pad := width - len(sign) - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return sign + s, true
}

// NormalizeCode is ZeroPad for lookup keys: integral numbers lose their
// decimal part first, so "2134.0" and "02134" map to the same key.
func (c *TypeCoercer) NormalizeCode(raw string, width int) (string, bool) {
	if c.IsMissing(raw) {
		return "", false
	}
	s := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && f == math.Trunc(f) && strings.ContainsAny(s, ".eE") {
		s = strconv.FormatFloat(f, 'f', 0, 64)
	}
	return c.ZeroPad(s, width)
}
