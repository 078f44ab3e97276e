// Package baseline is a reference-data heuristic predictor: the median sale
// price of the row's zipcode in a reference split, or the global median when
// the zipcode was never seen.
package baseline

import (
	"context"
	"fmt"
	"strconv"

	"housecast/adapters/datareadiness/coercer"
	"housecast/domain/core"
	"housecast/domain/dataset"
	"housecast/internal/errors"
	"housecast/ports"

	"github.com/montanaflynn/stats"
)

// Output columns, in order
var OutputHeaders = []string{"date", "zipcode", "city_full", "actual_price", "predicted_price"}

// Predictor implements ports.Predictor from per-zipcode medians
type Predictor struct {
	zipMedians   map[string]float64
	globalMedian float64
	coercer      *coercer.TypeCoercer
}

// Load reads the reference split at path and fits a predictor on it
func Load(ctx context.Context, reader ports.FrameReader, path string) (*Predictor, error) {
	reference, err := reader.Read(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "load baseline reference %s", path)
	}
	return Fit(reference, coercer.Default)
}

// Fit learns zipcode and global price medians from reference rows. Rows with a
// missing or non-numeric price are ignored.
func Fit(reference *dataset.Frame, c *coercer.TypeCoercer) (*Predictor, error) {
	prices, err := reference.Column("price")
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDataFormat, err), "baseline reference")
	}
	zips, err := reference.Column("zipcode")
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDataFormat, err), "baseline reference")
	}

	byZip := make(map[string][]float64)
	var all []float64
	for i, raw := range prices {
		price, ok := c.ParseNumber(raw)
		if !ok {
			continue
		}
		all = append(all, price)
		if zip, ok := c.NormalizeCode(zips[i], 5); ok {
			byZip[zip] = append(byZip[zip], price)
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("baseline reference: %w: no usable prices", core.ErrNoRows)
	}

	global, err := stats.Median(all)
	if err != nil {
		return nil, errors.Wrap(err, "compute global median")
	}
	medians := make(map[string]float64, len(byZip))
	for zip, values := range byZip {
		m, err := stats.Median(values)
		if err != nil {
			return nil, errors.Wrapf(err, "compute median for zipcode %s", zip)
		}
		medians[zip] = m
	}

	return &Predictor{zipMedians: medians, globalMedian: global, coercer: c}, nil
}

// Predict returns one output row per input row, in input order
func (p *Predictor) Predict(ctx context.Context, rows *dataset.Frame) (*dataset.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]dataset.Row, rows.Len())
	for i, row := range rows.Rows {
		predicted := p.globalMedian
		if zip, ok := p.coercer.NormalizeCode(row["zipcode"], 5); ok {
			if m, found := p.zipMedians[zip]; found {
				predicted = m
			}
		}
		out[i] = dataset.Row{
			"date":            row["date"],
			"zipcode":         row["zipcode"],
			"city_full":       row["city_full"],
			"actual_price":    row["price"],
			"predicted_price": strconv.FormatFloat(predicted, 'f', 2, 64),
		}
	}
	return dataset.NewFrame(OutputHeaders, out), nil
}

// GlobalMedian exposes the fallback prediction
func (p *Predictor) GlobalMedian() float64 {
	return p.globalMedian
}
