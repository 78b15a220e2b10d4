package indicators

import (
	"context"
	"math"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// ATRConfig holds configuration for the Average True Range indicator.
// Source is ignored: true range always reads high, low and previous close.
type ATRConfig struct {
	IndicatorConfig
}

// ATR implements the Average True Range indicator
type ATR struct {
	config ATRConfig
}

var _ SeriesIndicator = (*ATR)(nil)

// NewATR creates a new Average True Range indicator instance
func NewATR(config ATRConfig) *ATR {
	return &ATR{config: config}
}

func (a *ATR) Name() string { return "ATR" }

// RequiredDataPoints returns period+1: the first true range needs a previous close.
func (a *ATR) RequiredDataPoints() int {
	return a.config.Period + 1
}

// Calculate returns the ATR at the latest bar.
func (a *ATR) Calculate(ctx context.Context, bars []domain.Bar) (float64, error) {
	return lastValue(a.Series(ctx, bars))
}

// Series returns the ATR at every bar from Period on. The first bar contributes
// its plain high-low range; the average is seeded with the mean of the first
// Period ranges and then smoothed Wilder style.
func (a *ATR) Series(ctx context.Context, bars []domain.Bar) ([]float64, error) {
	period := a.config.Period
	if err := checkBars(a, period, bars); err != nil {
		return nil, err
	}
	n := float64(period)

	atr := 0.0
	out := make([]float64, 0, len(bars)-period)
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prev := bars[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
		}
		switch {
		case i < period:
			atr += tr / n
		default:
			atr = (atr*(n-1) + tr) / n
			out = append(out, atr)
		}
	}
	return out, nil
}
