// Package tabular reads and writes the CSV/XLSX files the batch tools exchange.
package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"housecast/domain/dataset"
	"housecast/internal"
	"housecast/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a reader that dispatches on file extension
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{logger: logger}
}

// Read loads path into a frame. ".xlsx" files are read from their first sheet,
// everything else is parsed as comma-separated text with a header row.
func (r *DataReader) Read(ctx context.Context, path string) (*dataset.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "input file not found: %s", path)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = r.readExcelRows(path)
	default:
		rows, err = r.readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}

	frame, err := processRows(rows)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d columns, %d rows)",
		path, float64(time.Since(start).Nanoseconds())/1e6, len(frame.Headers), frame.Len())
	return frame, nil
}

func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.DataFormat(fmt.Sprintf("%s has no sheets", path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheets[0])
	}
	return rows, nil
}

func (r *DataReader) readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDataFormat, err), "failed to read CSV file "+path)
	}
	return rows, nil
}

// processRows converts raw string rows into a frame. Short rows leave trailing
// columns empty, extra cells beyond the header are dropped.
func processRows(rows [][]string) (*dataset.Frame, error) {
	if len(rows) == 0 {
		return nil, errors.DataFormat("file is empty, a header row is required")
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, header := range headerRow {
		h := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if seen[h] {
			return nil, errors.DataFormat(fmt.Sprintf("duplicate column %q", h))
		}
		seen[h] = true
		headers[i] = h
	}

	dataRows := make([]dataset.Row, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(dataset.Row, len(headers))
		for j, h := range headers {
			if j < len(row) {
				rowData[h] = strings.TrimSpace(row[j])
			} else {
				rowData[h] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return dataset.NewFrame(headers, dataRows), nil
}
