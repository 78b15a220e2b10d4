package app

import (
	"context"
	"fmt"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/strategy/sweep"
)

// SweepBacktest runs the request under runs consecutive seeds starting at seed
// (0 picks one) and returns the distribution of outcomes. Nothing is stored
// apart from a journal entry with the summary.
func (s *TradingService) SweepBacktest(ctx context.Context, req domain.BacktestRequest, runs int, seed uint64) (*sweep.Report, error) {
	sw, err := sweep.NewSweeper(s.engine, sweep.Config{Runs: runs, Seed: seed})
	if err != nil {
		return nil, err
	}
	report, err := sw.Run(ctx, req, s.lookupStrategy)
	if err != nil {
		return nil, err
	}

	sum := report.Summary
	s.logger.Info(ctx, "Backtest sweep completed", map[string]interface{}{
		"strategyID":       req.StrategyID,
		"runs":             sum.Runs,
		"profitableRuns":   sum.ProfitableRuns,
		"meanFinalBalance": sum.MeanFinalBalance,
		"bestSeed":         sum.BestSeed,
	})
	s.journal(ctx, domain.JournalBacktest, req.Symbol, fmt.Sprintf(
		"Sweep of %d runs: %d profitable, mean final balance %.2f (%.2f .. %.2f)",
		sum.Runs, sum.ProfitableRuns, sum.MeanFinalBalance, sum.MinFinalBalance, sum.MaxFinalBalance))
	return report, nil
}
