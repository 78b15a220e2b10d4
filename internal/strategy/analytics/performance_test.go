package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTrade(profit float64, open time.Time) domain.SimulatedTrade {
	return domain.SimulatedTrade{
		Symbol:    "EURUSD",
		Side:      domain.Buy,
		Profit:    profit,
		OpenTime:  open,
		CloseTime: open.Add(4 * time.Hour),
	}
}

func TestAnalyzePerformance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := []domain.SimulatedTrade{
		makeTrade(1000, start),
		makeTrade(-1000, start.Add(4*time.Hour)),
	}

	metrics := AnalyzePerformance(trades, 10000)

	assert.Equal(t, 2, metrics.TotalTrades)
	assert.Equal(t, 1, metrics.WinningTrades)
	assert.Equal(t, 1, metrics.LosingTrades)
	assert.Equal(t, 50.0, metrics.WinRate)
	assert.Equal(t, 0.0, metrics.TotalProfit)
	assert.Equal(t, 10000.0, metrics.FinalBalance)
	assert.Equal(t, 1, metrics.MaxConsecutiveWins)
	assert.Equal(t, 1, metrics.MaxConsecutiveLosses)
	assert.Equal(t, 1000.0, metrics.AverageWin)
	assert.Equal(t, -1000.0, metrics.AverageLoss)
	assert.Equal(t, 1.0, metrics.ProfitFactor)
	assert.Equal(t, 1000.0, metrics.LargestWin)
	assert.Equal(t, -1000.0, metrics.LargestLoss)
	assert.Equal(t, 0.0, metrics.Expectancy)
	assert.Equal(t, 0.0, metrics.ReturnOnInvestment)
	assert.Equal(t, []float64{10000, 11000, 10000}, metrics.Balances)
	assert.InDelta(t, 1000.0/11000*100, metrics.MaxDrawdown, 1e-9)
}

func TestAnalyzePerformanceEmptyTrades(t *testing.T) {
	metrics := AnalyzePerformance(nil, 10000.0)
	assert.Equal(t, 0, metrics.TotalTrades)
	assert.Equal(t, 0.0, metrics.WinRate)
	assert.Equal(t, 10000.0, metrics.FinalBalance)
	assert.Equal(t, []float64{10000}, metrics.Balances)
}

func TestAnalyzePerformance_DecimalTotals(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var trades []domain.SimulatedTrade
	for i := 0; i < 50; i++ {
		trades = append(trades, makeTrade(0.1, start.Add(time.Duration(i)*time.Hour)))
	}
	metrics := AnalyzePerformance(trades, 100)
	assert.Equal(t, 5.0, metrics.TotalProfit)
	assert.Equal(t, 105.0, metrics.FinalBalance)
}

func TestAnalyzePerformance_TradeStats(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	profits := []float64{300, 100, -50, -150, -100, 200}
	var trades []domain.SimulatedTrade
	for i, p := range profits {
		trades = append(trades, makeTrade(p, start.Add(time.Duration(i)*time.Hour)))
	}

	metrics := AnalyzePerformance(trades, 2000)

	stats := metrics.TradeStats
	assert.Equal(t, 200.0, stats.AverageWin)
	assert.Equal(t, -100.0, stats.AverageLoss)
	assert.Equal(t, 300.0, stats.LargestWin)
	assert.Equal(t, -150.0, stats.LargestLoss)
	assert.Equal(t, 2, stats.MaxConsecutiveWins)
	assert.Equal(t, 3, stats.MaxConsecutiveLosses)
	assert.InDelta(t, 50.0, stats.Expectancy, 1e-9)
	assert.InDelta(t, 15.0, stats.ReturnOnInvestment, 1e-9)
	assert.Equal(t, 300.0, metrics.TotalProfit)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		balances []float64
		want     float64
	}{
		{name: "empty", balances: nil, want: 0},
		{name: "monotonic up", balances: []float64{100, 110, 120}, want: 0},
		{name: "single dip", balances: []float64{100, 80, 120}, want: 20},
		{name: "deeper later", balances: []float64{100, 90, 200, 100, 150}, want: 50},
		{name: "below zero", balances: []float64{100, 50, -50}, want: 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxDrawdown(tt.balances), 1e-9)
		})
	}
}

func TestSharpeRatio(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio(nil))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.1}))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.1, 0.1, 0.1}))

	// mean 0.02, sample stddev of {0.01, 0.03} is sqrt(0.0002)
	got := SharpeRatio([]float64{0.01, 0.03})
	assert.InDelta(t, 0.02/math.Sqrt(0.0002), got, 1e-9)
}

func TestProfitFactor(t *testing.T) {
	assert.Equal(t, 2.0, ProfitFactor(200, -100))
	assert.Equal(t, 250.0, ProfitFactor(250, 0), "losses are floored at 1")
	assert.Equal(t, 0.0, ProfitFactor(0, -50))
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(0, 0))
	assert.Equal(t, 25.0, WinRate(1, 4))
}

func TestAnalyzePerformance_NegativeBalanceSkipsReturns(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := []domain.SimulatedTrade{
		makeTrade(-150, start),
		makeTrade(-10, start.Add(time.Hour)),
		makeTrade(20, start.Add(2*time.Hour)),
	}
	metrics := AnalyzePerformance(trades, 100)
	require.Len(t, metrics.Balances, 4)
	assert.Equal(t, -40.0, metrics.FinalBalance)
	assert.False(t, math.IsNaN(metrics.SharpeRatio))
	assert.Equal(t, 0.0, metrics.SharpeRatio, "only one return with positive base balance")
}
