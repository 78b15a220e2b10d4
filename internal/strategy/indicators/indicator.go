package indicators

import (
	"context"
	"fmt"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
)

// Indicator represents a technical indicator that can be calculated from bars
type Indicator interface {
	// Calculate computes the indicator value for the latest bar of the series
	Calculate(ctx context.Context, bars []domain.Bar) (float64, error)

	// RequiredDataPoints returns the minimum number of bars needed for calculation
	RequiredDataPoints() int

	// Name returns the name of the indicator
	Name() string
}

// SeriesIndicator is an Indicator that can also report its value at every bar.
// Series returns len(bars)-RequiredDataPoints()+1 values; the first belongs to
// bar RequiredDataPoints()-1 and the last to the latest bar.
type SeriesIndicator interface {
	Indicator
	Series(ctx context.Context, bars []domain.Bar) ([]float64, error)
}

// PriceSource selects the bar price an indicator reads.
type PriceSource string

const (
	SourceClose   PriceSource = ""        // Default
	SourceTypical PriceSource = "typical" // (high + low + close) / 3
	SourceMedian  PriceSource = "median"  // (high + low) / 2
)

func (s PriceSource) prices(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		switch s {
		case SourceTypical:
			out[i] = (b.High + b.Low + b.Close) / 3
		case SourceMedian:
			out[i] = (b.High + b.Low) / 2
		default:
			out[i] = b.Close
		}
	}
	return out
}

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
	Source PriceSource
}

func notEnoughBars(name string, need, got int) error {
	return fmt.Errorf("%w: %s needs %d bars, got %d", ports.ErrInsufficientBarsCount, name, need, got)
}

func checkBars(ind Indicator, period int, bars []domain.Bar) error {
	need := ind.RequiredDataPoints()
	if period <= 0 || len(bars) < need {
		return notEnoughBars(ind.Name(), need, len(bars))
	}
	return nil
}

func lastValue(series []float64, err error) (float64, error) {
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}
