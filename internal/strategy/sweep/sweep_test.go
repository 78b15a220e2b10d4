package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/strategy/backtesting"
)

func request() domain.BacktestRequest {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.BacktestRequest{
		StrategyID:     "s1",
		Symbol:         "EURUSD",
		Timeframe:      "H1",
		StartDate:      start,
		EndDate:        start.AddDate(0, 1, 0),
		InitialBalance: 10000,
	}
}

func lookup(_ context.Context, id string) (*domain.StrategyInfo, error) {
	return &domain.StrategyInfo{ID: id, Name: "SMA Crossover"}, nil
}

func TestNewSweeper_Validation(t *testing.T) {
	engine := backtesting.NewEngine(backtesting.DefaultEngineConfig())
	for _, runs := range []int{0, -1, MaxRuns + 1} {
		_, err := NewSweeper(engine, Config{Runs: runs})
		assert.ErrorIs(t, err, ports.ErrValidation, "runs=%d", runs)
	}
}

func TestSweeper_Run(t *testing.T) {
	engine := backtesting.NewEngine(backtesting.DefaultEngineConfig())
	sw, err := NewSweeper(engine, Config{Runs: 40, Seed: 100, Workers: 4})
	require.NoError(t, err)

	report, err := sw.Run(context.Background(), request(), lookup)
	require.NoError(t, err)
	require.Len(t, report.Runs, 40)

	seeds := make(map[uint64]bool)
	for i, r := range report.Runs {
		require.NotNil(t, r.Result)
		seeds[r.Seed] = true
		assert.Equal(t, DefaultScoreFunction(r.Result), r.Score)
		if i > 0 {
			assert.LessOrEqual(t, r.Score, report.Runs[i-1].Score)
		}
	}
	assert.Len(t, seeds, 40)
	assert.True(t, seeds[100])
	assert.True(t, seeds[139])

	sum := report.Summary
	assert.Equal(t, 40, sum.Runs)
	assert.Equal(t, report.Runs[0].Seed, sum.BestSeed)
	assert.Equal(t, report.Runs[39].Seed, sum.WorstSeed)
	assert.LessOrEqual(t, sum.MinFinalBalance, sum.MeanFinalBalance)
	assert.GreaterOrEqual(t, sum.MaxFinalBalance, sum.MeanFinalBalance)
	assert.Greater(t, sum.StdFinalBalance, 0.0)
	assert.GreaterOrEqual(t, sum.MeanWinRate, 0.0)
	assert.Less(t, sum.MeanWinRate, 70.0)

	var meanROI float64
	streak := 0
	for _, r := range report.Runs {
		meanROI += r.Result.Stats.ReturnOnInvestment / 40
		streak = max(streak, r.Result.Stats.MaxConsecutiveLosses)
	}
	assert.InDelta(t, meanROI, sum.MeanROI, 1e-9)
	assert.Equal(t, streak, sum.LongestLosingStreak)
	assert.Greater(t, sum.LongestLosingStreak, 0)
	assert.InDelta(t, (sum.MeanFinalBalance-10000)/100, sum.MeanROI, 1e-6)
}

func TestDefaultScoreFunction(t *testing.T) {
	base := &domain.BacktestResult{
		WinRate:      50,
		ProfitFactor: 2,
		MaxDrawdown:  10,
		SharpeRatio:  1,
		Stats:        domain.TradeStats{ReturnOnInvestment: 5},
	}
	// 15 + 0.4 - 2 + 1 + 0.1
	assert.InDelta(t, 14.5, DefaultScoreFunction(base), 1e-9)

	better := *base
	better.Stats.ReturnOnInvestment = 10
	assert.InDelta(t, 1.0, DefaultScoreFunction(&better)-DefaultScoreFunction(base), 1e-9)
}

func TestSweeper_MatchesSingleRuns(t *testing.T) {
	engine := backtesting.NewEngine(backtesting.DefaultEngineConfig())
	sw, err := NewSweeper(engine, Config{Runs: 8, Seed: 7, Workers: 3})
	require.NoError(t, err)

	report, err := sw.Run(context.Background(), request(), lookup)
	require.NoError(t, err)

	for _, r := range report.Runs {
		single, err := engine.Run(context.Background(), backtesting.NewRandFactory(r.Seed)(), request(), lookup)
		require.NoError(t, err)
		assert.Equal(t, single, r.Result, "seed %d", r.Seed)
	}
}

func TestSweeper_FirstErrorStops(t *testing.T) {
	engine := backtesting.NewEngine(backtesting.DefaultEngineConfig())
	sw, err := NewSweeper(engine, Config{Runs: 50, Seed: 1, Workers: 2})
	require.NoError(t, err)

	boom := errors.New("store down")
	var calls atomic.Int32
	failing := func(context.Context, string) (*domain.StrategyInfo, error) {
		calls.Add(1)
		return nil, boom
	}

	_, err = sw.Run(context.Background(), request(), failing)
	assert.ErrorIs(t, err, boom)
	assert.Less(t, int(calls.Load()), 50)
}

func TestSweeper_InvalidRequest(t *testing.T) {
	engine := backtesting.NewEngine(backtesting.DefaultEngineConfig())
	sw, err := NewSweeper(engine, Config{Runs: 2})
	require.NoError(t, err)

	req := request()
	req.Symbol = ""
	_, err = sw.Run(context.Background(), req, lookup)
	assert.ErrorIs(t, err, ports.ErrValidation)
}

func TestSweeper_Canceled(t *testing.T) {
	engine := backtesting.NewEngine(backtesting.DefaultEngineConfig())
	sw, err := NewSweeper(engine, Config{Runs: 10, Seed: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sw.Run(ctx, request(), lookup)
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}
