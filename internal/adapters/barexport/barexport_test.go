package barexport

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBars() []domain.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Bar{
		{Time: start, Open: 1.1, High: 1.1003, Low: 1.0998, Close: 1.1001, TickVolume: 250, Spread: 12},
		{Time: start.Add(5 * time.Minute), Open: 1.1001, High: 1.1004, Low: 1.0999, Close: 1.1002, TickVolume: 900, Spread: 7},
	}
}

func TestWriteBarsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBarsCSV(&buf, sampleBars()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"time", "open", "high", "low", "close", "tick_volume", "spread", "real_volume"}, records[0])
	assert.Equal(t, []string{"2024-01-01T00:00:00Z", "1.1", "1.1003", "1.0998", "1.1001", "250", "12", "0"}, records[1])
	assert.Equal(t, "2024-01-01T00:05:00Z", records[2][0])
}

func TestCSVExporter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage", "backtests", "latest_bars.csv")
	exp := NewCSVExporter(path)
	assert.Equal(t, path, exp.Path())

	require.NoError(t, exp.Export(sampleBars()))
	require.NoError(t, exp.Export(sampleBars()[:1]))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2, "second export replaces the first")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCSVExporter_EmptySeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, NewCSVExporter(path).Export(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time,open,high,low,close,tick_volume,spread,real_volume\n", string(data))
}

func TestParquetExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.parquet")
	exp := NewParquetExporter(path)
	require.NoError(t, exp.Export(sampleBars()))

	rows, err := parquet.ReadFile[parquetBar](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sampleBars()[1].Time.UnixMilli(), rows[1].Time)
	assert.Equal(t, 1.1002, rows[1].Close)
	assert.Equal(t, int64(900), rows[1].TickVolume)
}

func TestNew(t *testing.T) {
	e, err := New("CSV", "a.csv")
	require.NoError(t, err)
	assert.IsType(t, &CSVExporter{}, e)

	e, err = New("", "a.csv")
	require.NoError(t, err)
	assert.IsType(t, &CSVExporter{}, e)

	e, err = New("parquet", "a.parquet")
	require.NoError(t, err)
	assert.IsType(t, &ParquetExporter{}, e)

	_, err = New("xlsx", "a.xlsx")
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}
