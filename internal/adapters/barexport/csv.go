// Package barexport writes synthesized bar series to the file the ML trainer reads.
package barexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// Header is the column layout of the CSV export.
var Header = []string{"time", "open", "high", "low", "close", "tick_volume", "spread", "real_volume"}

// CSVExporter writes bars as CSV with an RFC3339 time column.
type CSVExporter struct {
	path string
}

// NewCSVExporter creates an exporter writing to path.
func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{path: path}
}

// Path returns the file the exporter writes to.
func (e *CSVExporter) Path() string { return e.path }

// Export overwrites the target file with bars.
func (e *CSVExporter) Export(bars []domain.Bar) error {
	return writeAtomic(e.path, func(w io.Writer) error {
		return WriteBarsCSV(w, bars)
	})
}

// WriteBarsCSV writes the header and one row per bar to w.
func WriteBarsCSV(w io.Writer, bars []domain.Bar) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, b := range bars {
		err := writer.Write([]string{
			b.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatInt(b.TickVolume, 10),
			strconv.FormatInt(b.Spread, 10),
			strconv.FormatInt(b.RealVolume, 10),
		})
		if err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
