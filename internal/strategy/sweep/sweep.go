// Package sweep runs the same backtest request under many seeds concurrently
// and summarizes the spread of the outcomes.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/strategy/backtesting"
)

// MaxRuns caps a single sweep.
const MaxRuns = 1000

// Config holds configuration for a sweep.
type Config struct {
	Runs    int
	Seed    uint64 // Seed of the first run; 0 picks one from the clock
	Workers int    // Defaults to GOMAXPROCS
	// ScoreFunction ranks runs; defaults to DefaultScoreFunction.
	ScoreFunction func(*domain.BacktestResult) float64
}

// Run is the outcome of one seed.
type Run struct {
	Seed   uint64                 `json:"seed"`
	Score  float64                `json:"score"`
	Result *domain.BacktestResult `json:"-"`
}

// Summary aggregates the runs of a sweep. LongestLosingStreak is the worst
// MaxConsecutiveLosses of any run.
type Summary struct {
	Runs                int     `json:"runs"`
	ProfitableRuns      int     `json:"profitableRuns"`
	MeanFinalBalance    float64 `json:"meanFinalBalance"`
	MinFinalBalance     float64 `json:"minFinalBalance"`
	MaxFinalBalance     float64 `json:"maxFinalBalance"`
	StdFinalBalance     float64 `json:"stdFinalBalance"`
	MeanWinRate         float64 `json:"meanWinRate"`
	MeanMaxDrawdown     float64 `json:"meanMaxDrawdown"`
	MeanSharpeRatio     float64 `json:"meanSharpeRatio"`
	MeanProfitFactor    float64 `json:"meanProfitFactor"`
	MeanExpectancy      float64 `json:"meanExpectancy"`
	MeanROI             float64 `json:"meanReturnOnInvestment"` // Percent of initial balance
	LongestLosingStreak int     `json:"longestLosingStreak"`
	BestSeed            uint64  `json:"bestSeed"`
	WorstSeed           uint64  `json:"worstSeed"`
}

// Report is the full sweep outcome. Runs are sorted by score, best first.
type Report struct {
	StrategyID string  `json:"strategyId"`
	Symbol     string  `json:"symbol"`
	Summary    Summary `json:"summary"`
	Runs       []Run   `json:"runs"`
}

// Sweeper fans a request out over seeds on a bounded worker pool.
type Sweeper struct {
	engine *backtesting.Engine
	config Config
}

// NewSweeper creates a new sweeper instance.
func NewSweeper(engine *backtesting.Engine, config Config) (*Sweeper, error) {
	if config.Runs <= 0 || config.Runs > MaxRuns {
		return nil, ports.NewValidationError("runs")
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Seed == 0 {
		config.Seed = uint64(time.Now().UnixNano()) | 1
	}
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}
	return &Sweeper{engine: engine, config: config}, nil
}

// Run executes the request once per seed. Each run owns its entropy source, so
// runs share no mutable state. The first failing run cancels the rest.
//
// The run with seed X draws its ledger from backtesting.NewRandFactory(X), the
// same source a stored backtest uses under RANDOM_SEED=X, so both produce the
// same trades. Sweeps synthesize no bars.
func (s *Sweeper) Run(ctx context.Context, req domain.BacktestRequest, lookup ports.StrategyLookup) (*Report, error) {
	if err := backtesting.ValidateRequest(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runs := make([]Run, s.config.Runs)
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for w := 0; w < min(s.config.Workers, s.config.Runs); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				seed := s.config.Seed + uint64(i)
				result, err := s.engine.Run(ctx, backtesting.NewRandFactory(seed)(), req, lookup)
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("sweep run with seed %d: %w", seed, err)
						cancel()
					})
					continue
				}
				runs[i] = Run{Seed: seed, Score: s.config.ScoreFunction(result), Result: result}
			}
		}()
	}

feed:
	for i := range s.config.Runs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
	}

	slices.SortStableFunc(runs, func(a, b Run) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	return &Report{
		StrategyID: req.StrategyID,
		Symbol:     req.Symbol,
		Summary:    summarize(runs),
		Runs:       runs,
	}, nil
}

// summarize expects runs sorted by score, best first.
func summarize(runs []Run) Summary {
	sum := Summary{
		Runs:            len(runs),
		MinFinalBalance: math.Inf(1),
		MaxFinalBalance: math.Inf(-1),
		BestSeed:        runs[0].Seed,
		WorstSeed:       runs[len(runs)-1].Seed,
	}

	n := float64(len(runs))
	for _, r := range runs {
		res := r.Result
		if res.TotalProfit > 0 {
			sum.ProfitableRuns++
		}
		sum.MeanFinalBalance += res.FinalBalance / n
		sum.MinFinalBalance = math.Min(sum.MinFinalBalance, res.FinalBalance)
		sum.MaxFinalBalance = math.Max(sum.MaxFinalBalance, res.FinalBalance)
		sum.MeanWinRate += res.WinRate / n
		sum.MeanMaxDrawdown += res.MaxDrawdown / n
		sum.MeanSharpeRatio += res.SharpeRatio / n
		sum.MeanProfitFactor += res.ProfitFactor / n
		sum.MeanExpectancy += res.Stats.Expectancy / n
		sum.MeanROI += res.Stats.ReturnOnInvestment / n
		sum.LongestLosingStreak = max(sum.LongestLosingStreak, res.Stats.MaxConsecutiveLosses)
	}

	if len(runs) > 1 {
		var ss float64
		for _, r := range runs {
			d := r.Result.FinalBalance - sum.MeanFinalBalance
			ss += d * d
		}
		sum.StdFinalBalance = math.Sqrt(ss / (n - 1))
	}
	return sum
}

// DefaultScoreFunction combines several metrics into a single score.
func DefaultScoreFunction(r *domain.BacktestResult) float64 {
	score := 0.0
	score += r.WinRate * 0.3
	score += r.ProfitFactor * 0.2
	score -= r.MaxDrawdown * 0.2
	score += r.Stats.ReturnOnInvestment * 0.2
	score += r.SharpeRatio * 0.1
	return score
}
