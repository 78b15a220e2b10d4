package indicators

import (
	"context"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// RSIConfig holds configuration for the RSI indicator
type RSIConfig struct {
	IndicatorConfig
	Overbought float64
	Oversold   float64
}

// RSI implements the Relative Strength Index with Wilder's smoothing.
type RSI struct {
	config RSIConfig
}

var _ SeriesIndicator = (*RSI)(nil)

// NewRSI creates a new RSI indicator instance
func NewRSI(config RSIConfig) *RSI {
	return &RSI{config: config}
}

func (r *RSI) Name() string { return "RSI" }

// RequiredDataPoints returns period+1: RSI works on period price changes.
func (r *RSI) RequiredDataPoints() int {
	return r.config.Period + 1
}

// Calculate returns the RSI at the latest bar.
func (r *RSI) Calculate(ctx context.Context, bars []domain.Bar) (float64, error) {
	return lastValue(r.Series(ctx, bars))
}

// Series returns the RSI at every bar from Period on. A flat window reads 50.
func (r *RSI) Series(ctx context.Context, bars []domain.Bar) ([]float64, error) {
	period := r.config.Period
	if err := checkBars(r, period, bars); err != nil {
		return nil, err
	}
	prices := r.config.Source.prices(bars)
	n := float64(period)

	var avgGain, avgLoss float64
	out := make([]float64, 0, len(prices)-period)
	for i := 1; i < len(prices); i++ {
		gain, loss := splitChange(prices[i] - prices[i-1])
		if i <= period {
			avgGain += gain / n
			avgLoss += loss / n
			if i < period {
				continue
			}
		} else {
			avgGain = (avgGain*(n-1) + gain) / n
			avgLoss = (avgLoss*(n-1) + loss) / n
		}
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out, nil
}

// IsOverbought checks if the RSI value indicates an overbought condition
func (r *RSI) IsOverbought(value float64) bool {
	return value >= r.config.Overbought
}

// IsOversold checks if the RSI value indicates an oversold condition
func (r *RSI) IsOversold(value float64) bool {
	return value <= r.config.Oversold
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50
	case avgLoss == 0:
		return 100
	}
	return min(100, max(0, 100-100/(1+avgGain/avgLoss)))
}
