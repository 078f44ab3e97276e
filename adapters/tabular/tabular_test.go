package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"housecast/domain/dataset"
	"housecast/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "holdout.csv",
		"\ufeffdate,price,city_full\n2021-03-05, 450000 ,Seattle\n2021-04-01,510000\n")

	frame, err := NewDataReader(nil).Read(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "price", "city_full"}, frame.Headers)
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, "450000", frame.Rows[0]["price"])
	assert.Equal(t, "", frame.Rows[1]["city_full"])
}

func TestReadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	reader := NewDataReader(nil)

	_, err := reader.Read(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = reader.Read(context.Background(), writeFile(t, dir, "empty.csv", ""))
	assert.True(t, errors.HasCode(err, errors.CodeDataFormat))

	_, err = reader.Read(context.Background(), writeFile(t, dir, "dup.csv", "date,date\n1,2\n"))
	assert.True(t, errors.HasCode(err, errors.CodeDataFormat))
}

func TestReadHeaderOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "header.csv", "date,price\n")

	frame, err := NewDataReader(nil).Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, frame.Len())
}

func TestReadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdout.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"date", "price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"2021-03-05", "450000"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	frame, err := NewDataReader(nil).Read(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, frame.Len())
	assert.Equal(t, "450000", frame.Rows[0]["price"])
}

func TestWriteCreatesDirectoryAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "predictions", "preds_2021_03.csv")
	writer := NewCSVWriter()

	first := dataset.NewFrame([]string{"date", "predicted_price"}, []dataset.Row{
		{"date": "2021-03-05", "predicted_price": "1"},
		{"date": "2021-03-20", "predicted_price": "2"},
	})
	require.NoError(t, writer.Write(context.Background(), path, first))

	second := dataset.NewFrame([]string{"date", "predicted_price"}, []dataset.Row{
		{"date": "2021-03-05", "predicted_price": "3"},
	})
	require.NoError(t, writer.Write(context.Background(), path, second))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,predicted_price\n2021-03-05,3\n", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
