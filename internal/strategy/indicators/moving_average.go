package indicators

import (
	"context"
	"fmt"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	SimpleMovingAverage      MovingAverageType = "SMA"
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA over the configured price source.
type MovingAverage struct {
	config MovingAverageConfig
}

var _ SeriesIndicator = (*MovingAverage)(nil)

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	return &MovingAverage{config: config}
}

func (m *MovingAverage) Name() string { return string(m.config.Type) }

func (m *MovingAverage) RequiredDataPoints() int { return m.config.Period }

// Calculate returns the average at the latest bar.
func (m *MovingAverage) Calculate(ctx context.Context, bars []domain.Bar) (float64, error) {
	return lastValue(m.Series(ctx, bars))
}

// Series returns the average at every bar from Period-1 on. The EMA is seeded
// with the SMA of the first Period prices.
func (m *MovingAverage) Series(ctx context.Context, bars []domain.Bar) ([]float64, error) {
	period := m.config.Period
	if err := checkBars(m, period, bars); err != nil {
		return nil, err
	}
	prices := m.config.Source.prices(bars)

	switch m.config.Type {
	case SimpleMovingAverage:
		return rollingMean(prices, period), nil
	case ExponentialMovingAverage:
		out := make([]float64, 0, len(prices)-period+1)
		k := 2.0 / float64(period+1)
		ema := rollingMean(prices[:period], period)[0]
		out = append(out, ema)
		for _, p := range prices[period:] {
			ema += (p - ema) * k
			out = append(out, ema)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported moving average type: %s", m.config.Type)
	}
}

func rollingMean(prices []float64, period int) []float64 {
	out := make([]float64, 0, len(prices)-period+1)
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}
