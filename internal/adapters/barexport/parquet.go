package barexport

import (
	"fmt"
	"io"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/parquet-go/parquet-go"
)

// parquetBar is the on-disk row. Time is Unix milliseconds.
type parquetBar struct {
	Time       int64   `parquet:"time"`
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	TickVolume int64   `parquet:"tick_volume"`
	Spread     int64   `parquet:"spread"`
	RealVolume int64   `parquet:"real_volume"`
}

// ParquetExporter writes bars as a Parquet file with the same columns as the CSV export.
type ParquetExporter struct {
	path string
}

// NewParquetExporter creates an exporter writing to path.
func NewParquetExporter(path string) *ParquetExporter {
	return &ParquetExporter{path: path}
}

// Path returns the file the exporter writes to.
func (e *ParquetExporter) Path() string { return e.path }

// Export overwrites the target file with bars.
func (e *ParquetExporter) Export(bars []domain.Bar) error {
	rows := make([]parquetBar, len(bars))
	for i, b := range bars {
		rows[i] = parquetBar{
			Time:       b.Time.UnixMilli(),
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			TickVolume: b.TickVolume,
			Spread:     b.Spread,
			RealVolume: b.RealVolume,
		}
	}
	return writeAtomic(e.path, func(w io.Writer) error {
		if err := parquet.Write(w, rows); err != nil {
			return fmt.Errorf("write parquet: %w", err)
		}
		return nil
	})
}
