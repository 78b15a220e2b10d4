package domain

import (
	"fmt"
	"time"
)

// MinInitialBalance is the smallest account balance a backtest accepts.
const MinInitialBalance = 100.0

// BacktestRequest holds the parameters of one backtest run.
type BacktestRequest struct {
	StrategyID     string    `json:"strategyId"`
	Symbol         string    `json:"symbol"`
	Timeframe      string    `json:"timeframe"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	InitialBalance float64   `json:"initialBalance"`
}

// BacktestResult is the complete outcome of a backtest run.
// ID and CreatedAt are assigned by the repository that stores it.
type BacktestResult struct {
	ID             string           `json:"id"`
	StrategyID     string           `json:"strategyId"`
	StrategyName   string           `json:"strategyName"`
	Symbol         string           `json:"symbol"`
	Timeframe      string           `json:"timeframe"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        time.Time        `json:"endDate"`
	InitialBalance float64          `json:"initialBalance"`
	FinalBalance   float64          `json:"finalBalance"`
	TotalTrades    int              `json:"totalTrades"`
	WinningTrades  int              `json:"winningTrades"`
	LosingTrades   int              `json:"losingTrades"`
	WinRate        float64          `json:"winRate"`     // Percent, 0-100
	TotalProfit    float64          `json:"totalProfit"` // Net profit in account currency
	MaxDrawdown    float64          `json:"maxDrawdown"` // Percent of peak equity
	SharpeRatio    float64          `json:"sharpeRatio"`
	ProfitFactor   float64          `json:"profitFactor"`
	Stats          TradeStats       `json:"stats"`
	EquityCurve    []float64        `json:"equityCurve"`
	Trades         []SimulatedTrade `json:"trades"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// TradeStats are per-trade statistics of a ledger.
type TradeStats struct {
	AverageWin           float64 `json:"averageWin"`
	AverageLoss          float64 `json:"averageLoss"` // Negative or zero
	LargestWin           float64 `json:"largestWin"`
	LargestLoss          float64 `json:"largestLoss"` // Negative or zero
	MaxConsecutiveWins   int     `json:"maxConsecutiveWins"`
	MaxConsecutiveLosses int     `json:"maxConsecutiveLosses"`
	Expectancy           float64 `json:"expectancy"`         // Mean profit per trade
	ReturnOnInvestment   float64 `json:"returnOnInvestment"` // Percent of initial balance
}

// ParseDate accepts YYYY-MM-DD (midnight UTC) or RFC3339. Empty yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return t.UTC(), nil
}
