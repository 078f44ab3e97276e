package tabular

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"housecast/domain/dataset"
	"housecast/internal/errors"
)

// CSVWriter writes frames as header-first CSV with no index column
type CSVWriter struct{}

// NewCSVWriter creates a CSV writer
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Write replaces the file at path. The parent directory is created if needed,
// and the file is renamed into place so readers never see a partial write.
func (w *CSVWriter) Write(ctx context.Context, path string, frame *dataset.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	cw := csv.NewWriter(tmp)
	if err := cw.WriteAll(frame.Records()); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "rename into %s", path)
	}
	return nil
}
