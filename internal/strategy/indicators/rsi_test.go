package indicators

import (
	"context"
	"testing"

	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSI_Calculate(t *testing.T) {
	config := RSIConfig{
		IndicatorConfig: IndicatorConfig{Period: 3},
		Overbought:      70,
		Oversold:        30,
	}

	tests := []struct {
		name          string
		config        RSIConfig
		closes        []float64
		expectedValue float64
		expectError   bool
	}{
		{
			name:          "RSI with sufficient data",
			config:        config,
			closes:        []float64{100, 102, 101, 103, 102, 104},
			expectedValue: 77.272727, // Wilder's smoothing
		},
		{
			name: "Insufficient data",
			config: RSIConfig{
				IndicatorConfig: IndicatorConfig{Period: 7},
			},
			closes:      []float64{100, 102, 101, 103, 102, 104},
			expectError: true,
		},
		{
			name:          "All gains",
			config:        config,
			closes:        []float64{100, 102, 104, 106},
			expectedValue: 100.0,
		},
		{
			name:          "All losses",
			config:        config,
			closes:        []float64{106, 104, 102, 100},
			expectedValue: 0.0,
		},
		{
			name:          "Flat",
			config:        config,
			closes:        []float64{100, 100, 100, 100},
			expectedValue: 50.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := NewRSI(tt.config)
			value, err := rsi.Calculate(context.Background(), closes(tt.closes...))

			if tt.expectError {
				assert.ErrorIs(t, err, ports.ErrInsufficientBarsCount)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedValue, value, 0.0001)
		})
	}
}

func TestRSI_IsOverboughtOversold(t *testing.T) {
	rsi := NewRSI(RSIConfig{
		IndicatorConfig: IndicatorConfig{Period: 14},
		Overbought:      70,
		Oversold:        30,
	})

	tests := []struct {
		name         string
		value        float64
		isOverbought bool
		isOversold   bool
	}{
		{name: "Overbought condition", value: 75.0, isOverbought: true},
		{name: "Oversold condition", value: 25.0, isOversold: true},
		{name: "Neutral condition", value: 50.0},
		{name: "Exact overbought threshold", value: 70.0, isOverbought: true},
		{name: "Exact oversold threshold", value: 30.0, isOversold: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isOverbought, rsi.IsOverbought(tt.value))
			assert.Equal(t, tt.isOversold, rsi.IsOversold(tt.value))
		})
	}
}

func TestRSI_Name(t *testing.T) {
	rsi := NewRSI(RSIConfig{IndicatorConfig: IndicatorConfig{Period: 14}})
	assert.Equal(t, "RSI", rsi.Name())
	assert.Equal(t, 15, rsi.RequiredDataPoints())
}
