package dataset

import (
	"fmt"

	"housecast/domain/core"
)

// Row is one record of raw cell text keyed by header
type Row map[string]string

// Frame is an ordered, column-named table. Frames are never mutated after
// construction; derivations return new frames.
type Frame struct {
	Headers []string
	Rows    []Row
}

// NewFrame creates a frame from headers and rows
func NewFrame(headers []string, rows []Row) *Frame {
	if rows == nil {
		rows = []Row{}
	}
	return &Frame{Headers: headers, Rows: rows}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Rows)
}

// HasColumn reports whether name is one of the headers
func (f *Frame) HasColumn(name string) bool {
	for _, h := range f.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the cells of one column in row order
func (f *Frame) Column(name string) ([]string, error) {
	if !f.HasColumn(name) {
		return nil, core.NewMissingColumnError(name)
	}
	values := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		values[i] = row[name]
	}
	return values, nil
}

// Select returns a frame holding the rows at the given indices, in that order
func (f *Frame) Select(indices []int) *Frame {
	rows := make([]Row, len(indices))
	for i, idx := range indices {
		rows[i] = f.Rows[idx]
	}
	return NewFrame(f.Headers, rows)
}

// Head returns at most the first n rows
func (f *Frame) Head(n int) *Frame {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	return NewFrame(f.Headers, f.Rows[:n])
}

// WithColumn returns a copy of the frame with name set to values,
// appended as the last header when it does not exist yet
func (f *Frame) WithColumn(name string, values []string) (*Frame, error) {
	if len(values) != len(f.Rows) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(f.Rows))
	}

	headers := append([]string(nil), f.Headers...)
	if !f.HasColumn(name) {
		headers = append(headers, name)
	}

	rows := make([]Row, len(f.Rows))
	for i, row := range f.Rows {
		next := make(Row, len(row)+1)
		for k, v := range row {
			next[k] = v
		}
		next[name] = values[i]
		rows[i] = next
	}
	return NewFrame(headers, rows), nil
}

// Records renders the frame as a header row followed by data rows
func (f *Frame) Records() [][]string {
	records := make([][]string, 0, len(f.Rows)+1)
	records = append(records, append([]string(nil), f.Headers...))
	for _, row := range f.Rows {
		record := make([]string, len(f.Headers))
		for i, h := range f.Headers {
			record[i] = row[h]
		}
		records = append(records, record)
	}
	return records
}

// Concat stacks frames in order. Headers are the union in first-seen order;
// cells a frame does not have are left empty.
func Concat(frames ...*Frame) *Frame {
	var headers []string
	seen := make(map[string]bool)
	total := 0
	for _, f := range frames {
		if f == nil {
			continue
		}
		total += f.Len()
		for _, h := range f.Headers {
			if !seen[h] {
				seen[h] = true
				headers = append(headers, h)
			}
		}
	}

	rows := make([]Row, 0, total)
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, row := range f.Rows {
			next := make(Row, len(headers))
			for _, h := range headers {
				next[h] = row[h]
			}
			rows = append(rows, next)
		}
	}
	return NewFrame(headers, rows)
}
