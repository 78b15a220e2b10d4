package barexport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rigaud3000/StarTrader/internal/ports"
)

// Supported formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// New returns the exporter for format ("csv" or "parquet").
func New(format, path string) (ports.BarExporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV, "":
		return NewCSVExporter(path), nil
	case FormatParquet:
		return NewParquetExporter(path), nil
	default:
		return nil, fmt.Errorf("%w: unsupported bar export format %q (use csv or parquet)", ports.ErrConfigurationError, format)
	}
}

// writeAtomic writes to a temp file next to path and renames it over path,
// so readers never observe a half-written export.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
