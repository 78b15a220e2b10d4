package indicators

import (
	"context"
	"testing"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closes builds hourly bars with the given closing prices.
func closes(values ...float64) []domain.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(values))
	for i, v := range values {
		bars[i] = domain.Bar{Time: start.Add(time.Duration(i) * time.Hour), Open: v, High: v, Low: v, Close: v}
	}
	return bars
}

func TestMovingAverage_Calculate(t *testing.T) {
	bars := closes(100, 102, 101, 103, 104)

	tests := []struct {
		name          string
		config        MovingAverageConfig
		expectedValue float64
		expectError   bool
	}{
		{
			name: "SMA with sufficient data",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 3},
				Type:            SimpleMovingAverage,
			},
			expectedValue: 102.666667, // (101 + 103 + 104) / 3
		},
		{
			name: "EMA with sufficient data",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 3},
				Type:            ExponentialMovingAverage,
			},
			expectedValue: 103.0,
		},
		{
			name: "Insufficient data",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 6},
				Type:            SimpleMovingAverage,
			},
			expectError: true,
		},
		{
			name: "Zero period",
			config: MovingAverageConfig{
				Type: SimpleMovingAverage,
			},
			expectError: true,
		},
		{
			name: "Invalid MA type",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 3},
				Type:            "INVALID",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma := NewMovingAverage(tt.config)
			value, err := ma.Calculate(context.Background(), bars)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedValue, value, 0.0001)
		})
	}
}

func TestMovingAverage_InsufficientBarsSentinel(t *testing.T) {
	ma := NewMovingAverage(MovingAverageConfig{IndicatorConfig: IndicatorConfig{Period: 10}, Type: SimpleMovingAverage})
	_, err := ma.Calculate(context.Background(), closes(1, 2, 3))
	assert.ErrorIs(t, err, ports.ErrInsufficientBarsCount)
	assert.Equal(t, 10, ma.RequiredDataPoints())
}

func TestMovingAverage_Name(t *testing.T) {
	assert.Equal(t, "SMA", NewMovingAverage(MovingAverageConfig{Type: SimpleMovingAverage}).Name())
	assert.Equal(t, "EMA", NewMovingAverage(MovingAverageConfig{Type: ExponentialMovingAverage}).Name())
}

func TestATR_Calculate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bar := func(i int, high, low, closePrice float64) domain.Bar {
		return domain.Bar{Time: start.Add(time.Duration(i) * time.Hour), High: high, Low: low, Close: closePrice}
	}

	tests := []struct {
		name        string
		bars        []domain.Bar
		expected    float64
		expectError bool
	}{
		{
			name:     "constant range",
			bars:     []domain.Bar{bar(0, 11, 9, 10), bar(1, 12, 10, 11), bar(2, 13, 11, 12), bar(3, 14, 12, 13)},
			expected: 2,
		},
		{
			name:     "gap widens true range",
			bars:     []domain.Bar{bar(0, 11, 9, 10), bar(1, 12, 10, 11), bar(2, 13, 11, 12), bar(3, 20, 18, 19)},
			expected: 4, // (2*2 + 8) / 3
		},
		{
			name:        "not enough bars",
			bars:        []domain.Bar{bar(0, 11, 9, 10), bar(1, 12, 10, 11), bar(2, 13, 11, 12)},
			expectError: true,
		},
	}

	atr := NewATR(ATRConfig{IndicatorConfig{Period: 3}})
	assert.Equal(t, 4, atr.RequiredDataPoints())
	assert.Equal(t, "ATR", atr.Name())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := atr.Calculate(context.Background(), tt.bars)
			if tt.expectError {
				assert.ErrorIs(t, err, ports.ErrInsufficientBarsCount)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, value, 1e-9)
		})
	}
}

func TestSeries_MatchesCalculate(t *testing.T) {
	bars := closes(100, 102, 101, 103, 104, 99, 98, 105, 107, 106)
	ctx := context.Background()

	for _, ind := range []SeriesIndicator{
		NewMovingAverage(MovingAverageConfig{IndicatorConfig: IndicatorConfig{Period: 3}, Type: SimpleMovingAverage}),
		NewMovingAverage(MovingAverageConfig{IndicatorConfig: IndicatorConfig{Period: 4}, Type: ExponentialMovingAverage}),
		NewRSI(RSIConfig{IndicatorConfig: IndicatorConfig{Period: 3}}),
		NewATR(ATRConfig{IndicatorConfig{Period: 3}}),
	} {
		t.Run(ind.Name(), func(t *testing.T) {
			series, err := ind.Series(ctx, bars)
			require.NoError(t, err)
			require.Len(t, series, len(bars)-ind.RequiredDataPoints()+1)

			// every point equals Calculate over the bars up to it
			for i, v := range series {
				want, err := ind.Calculate(ctx, bars[:ind.RequiredDataPoints()+i])
				require.NoError(t, err)
				assert.InDelta(t, want, v, 1e-9)
			}
		})
	}
}

func TestMovingAverage_PriceSource(t *testing.T) {
	bars := []domain.Bar{
		{High: 12, Low: 6, Close: 9},
		{High: 15, Low: 9, Close: 12},
	}
	ctx := context.Background()

	tests := []struct {
		source PriceSource
		want   float64
	}{
		{SourceClose, 10.5},
		{SourceTypical, 10.5},
		{SourceMedian, 10.5},
	}
	for _, tt := range tests {
		ma := NewMovingAverage(MovingAverageConfig{IndicatorConfig: IndicatorConfig{Period: 2, Source: tt.source}, Type: SimpleMovingAverage})
		got, err := ma.Calculate(ctx, bars)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "source %q", tt.source)
	}

	skewed := []domain.Bar{{High: 10, Low: 4, Close: 10}}
	one := func(src PriceSource) float64 {
		v, err := NewMovingAverage(MovingAverageConfig{IndicatorConfig: IndicatorConfig{Period: 1, Source: src}, Type: SimpleMovingAverage}).Calculate(ctx, skewed)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, 10.0, one(SourceClose))
	assert.Equal(t, 8.0, one(SourceTypical))
	assert.Equal(t, 7.0, one(SourceMedian))
}

func TestMovingAverage_UnsupportedType(t *testing.T) {
	ma := NewMovingAverage(MovingAverageConfig{IndicatorConfig: IndicatorConfig{Period: 2}, Type: "WMA"})
	_, err := ma.Calculate(context.Background(), closes(1, 2, 3))
	assert.ErrorContains(t, err, "unsupported moving average type")
}
