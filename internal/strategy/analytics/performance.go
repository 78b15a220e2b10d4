package analytics

import (
	"math"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/shopspring/decimal"
)

// PerformanceMetrics holds comprehensive performance metrics for a trade ledger
type PerformanceMetrics struct {
	// Basic Metrics
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // Percent, 0-100
	TotalProfit   float64
	GrossProfit   float64
	GrossLoss     float64 // Negative or zero
	MaxDrawdown   float64 // Percent of peak balance
	ProfitFactor  float64
	SharpeRatio   float64
	FinalBalance  float64

	// Advanced Metrics
	domain.TradeStats

	// Balances is the running balance path: Balances[0] is the initial balance
	// and Balances[i+1] is the balance after trade i.
	Balances []float64
}

// AnalyzePerformance calculates performance metrics from trades in ledger order.
// Money totals are accumulated with decimal arithmetic so that
// FinalBalance == initialBalance + TotalProfit holds exactly for rounded profits.
func AnalyzePerformance(trades []domain.SimulatedTrade, initialBalance float64) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		FinalBalance: initialBalance,
		Balances:     make([]float64, 0, len(trades)+1),
	}
	metrics.Balances = append(metrics.Balances, initialBalance)

	if len(trades) == 0 {
		return metrics
	}

	balance := decimal.NewFromFloat(initialBalance)
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	returns := make([]float64, 0, len(trades))

	var consecutiveWins, consecutiveLosses int

	for _, trade := range trades {
		profit := decimal.NewFromFloat(trade.Profit)

		if before := balance.InexactFloat64(); before > 0 {
			returns = append(returns, trade.Profit/before)
		}

		metrics.TotalTrades++
		if trade.IsWin() {
			metrics.WinningTrades++
			grossProfit = grossProfit.Add(profit)
			consecutiveWins++
			consecutiveLosses = 0
			metrics.LargestWin = math.Max(metrics.LargestWin, trade.Profit)
		} else {
			metrics.LosingTrades++
			grossLoss = grossLoss.Add(profit)
			consecutiveLosses++
			consecutiveWins = 0
			metrics.LargestLoss = math.Min(metrics.LargestLoss, trade.Profit)
		}
		if consecutiveWins > metrics.MaxConsecutiveWins {
			metrics.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > metrics.MaxConsecutiveLosses {
			metrics.MaxConsecutiveLosses = consecutiveLosses
		}

		balance = balance.Add(profit)
		metrics.Balances = append(metrics.Balances, balance.InexactFloat64())
	}

	metrics.GrossProfit = grossProfit.InexactFloat64()
	metrics.GrossLoss = grossLoss.InexactFloat64()
	metrics.TotalProfit = grossProfit.Add(grossLoss).InexactFloat64()
	metrics.FinalBalance = balance.InexactFloat64()

	metrics.WinRate = WinRate(metrics.WinningTrades, metrics.TotalTrades)
	metrics.ProfitFactor = ProfitFactor(metrics.GrossProfit, metrics.GrossLoss)
	metrics.MaxDrawdown = MaxDrawdown(metrics.Balances)
	metrics.SharpeRatio = SharpeRatio(returns)
	if initialBalance != 0 {
		metrics.ReturnOnInvestment = metrics.TotalProfit / initialBalance * 100
	}
	if metrics.WinningTrades > 0 {
		metrics.AverageWin = metrics.GrossProfit / float64(metrics.WinningTrades)
	}
	if metrics.LosingTrades > 0 {
		metrics.AverageLoss = metrics.GrossLoss / float64(metrics.LosingTrades)
	}
	winShare := float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	metrics.Expectancy = winShare*metrics.AverageWin + (1-winShare)*metrics.AverageLoss

	return metrics
}

// WinRate returns winning/total as a percentage, or 0 when there are no trades.
func WinRate(winning, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(winning) / float64(total) * 100
}

// ProfitFactor returns |grossProfit| / max(1, |grossLoss|).
// The floor of 1 keeps ledgers without losses finite.
func ProfitFactor(grossProfit, grossLoss float64) float64 {
	return math.Abs(grossProfit) / math.Max(1, math.Abs(grossLoss))
}

// MaxDrawdown returns the largest peak-to-trough decline of a balance path,
// as a percentage of the peak. Non-positive peaks are ignored.
func MaxDrawdown(balances []float64) float64 {
	if len(balances) == 0 {
		return 0
	}
	peak := balances[0]
	maxDD := 0.0
	for _, b := range balances {
		if b > peak {
			peak = b
			continue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - b) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// SharpeRatio returns mean(returns) / stddev(returns) using the sample standard
// deviation and a zero risk-free rate. It is 0 for fewer than two returns or
// when the returns have no variance.
func SharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)

	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return mean / stdDev
}
