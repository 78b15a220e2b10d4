package backtesting

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/strategy/analytics"
	"github.com/shopspring/decimal"
)

// Trade generation ranges. Upper bounds are exclusive.
const (
	minTrades     = 20
	maxTrades     = 70
	minWinRate    = 45.0
	maxWinRate    = 70.0
	minWinProfit  = 50.0
	maxWinProfit  = 250.0
	minLossProfit = -180.0
	maxLossProfit = -30.0
	minOpenPrice  = 1.0
	maxOpenPrice  = 1.1

	// Ranges used only with LegacyMetrics.
	legacyMinDrawdown = 5.0
	legacyMaxDrawdown = 20.0
	legacyMinSharpe   = 0.5
	legacyMaxSharpe   = 2.0
)

// EngineConfig holds configuration for the trade and metrics engine
type EngineConfig struct {
	TradeDuration     time.Duration // Holding time of each trade, also the spacing between opens
	EquitySampleEvery int           // Append a balance sample to the equity curve every N trades
	Volume            float64       // Lots per trade
	ContractSize      float64       // Units per lot, converts profit into a price move
	// LegacyMetrics draws MaxDrawdown and SharpeRatio from fixed ranges instead
	// of computing them from the balance path.
	LegacyMetrics bool
}

// DefaultEngineConfig returns the standard engine settings.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TradeDuration:     4 * time.Hour,
		EquitySampleEvery: 3,
		Volume:            0.1,
		ContractSize:      100_000,
	}
}

// Engine produces backtest results from a request and an entropy source.
// It holds no mutable state and is safe for concurrent use as long as every
// run gets its own ports.Rand.
type Engine struct {
	cfg EngineConfig
}

// NewEngine creates a new engine, filling zero config values with defaults.
func NewEngine(cfg EngineConfig) *Engine {
	def := DefaultEngineConfig()
	if cfg.TradeDuration <= 0 {
		cfg.TradeDuration = def.TradeDuration
	}
	if cfg.EquitySampleEvery <= 0 {
		cfg.EquitySampleEvery = def.EquitySampleEvery
	}
	if cfg.Volume <= 0 {
		cfg.Volume = def.Volume
	}
	if cfg.ContractSize <= 0 {
		cfg.ContractSize = def.ContractSize
	}
	return &Engine{cfg: cfg}
}

// ValidateRequest checks a backtest request, naming every offending field.
func ValidateRequest(req domain.BacktestRequest) error {
	var invalid []string
	if strings.TrimSpace(req.StrategyID) == "" {
		invalid = append(invalid, "strategyId")
	}
	if strings.TrimSpace(req.Symbol) == "" {
		invalid = append(invalid, "symbol")
	}
	if strings.TrimSpace(req.Timeframe) == "" {
		invalid = append(invalid, "timeframe")
	}
	if req.StartDate.IsZero() {
		invalid = append(invalid, "startDate")
	}
	if req.EndDate.IsZero() {
		invalid = append(invalid, "endDate")
	}
	if math.IsNaN(req.InitialBalance) || req.InitialBalance < domain.MinInitialBalance {
		invalid = append(invalid, "initialBalance")
	}
	if len(invalid) > 0 {
		return ports.NewValidationError(invalid...)
	}
	return nil
}

// Run validates the request, resolves the strategy and simulates the trade ledger.
//
// Trade counts and outcomes are drawn from rng rather than derived from a bar walk:
// winning trades come first in the ledger, followed by the losing ones.
// ID and CreatedAt of the result are left for the repository to assign.
func (e *Engine) Run(ctx context.Context, rng ports.Rand, req domain.BacktestRequest, lookup ports.StrategyLookup) (*domain.BacktestResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	info, err := lookup(ctx, req.StrategyID)
	if err != nil {
		return nil, fmt.Errorf("%w: strategy lookup: %w", ports.ErrInternalSimulation, err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrStrategyNotFound, req.StrategyID)
	}

	totalTrades := minTrades + rng.IntN(maxTrades-minTrades)
	winRateDraw := minWinRate + rng.Float64()*(maxWinRate-minWinRate)
	winningTrades := int(math.Floor(winRateDraw / 100 * float64(totalTrades)))

	trades := make([]domain.SimulatedTrade, 0, totalTrades)
	for i := 0; i < totalTrades; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
		}
		trades = append(trades, e.simulateTrade(rng, req, i, i < winningTrades))
	}

	metrics := analytics.AnalyzePerformance(trades, req.InitialBalance)

	result := &domain.BacktestResult{
		StrategyID:     req.StrategyID,
		StrategyName:   info.Name,
		Symbol:         req.Symbol,
		Timeframe:      req.Timeframe,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		InitialBalance: req.InitialBalance,
		FinalBalance:   metrics.FinalBalance,
		TotalTrades:    metrics.TotalTrades,
		WinningTrades:  metrics.WinningTrades,
		LosingTrades:   metrics.LosingTrades,
		WinRate:        metrics.WinRate,
		TotalProfit:    metrics.TotalProfit,
		MaxDrawdown:    metrics.MaxDrawdown,
		SharpeRatio:    metrics.SharpeRatio,
		ProfitFactor:   metrics.ProfitFactor,
		Stats:          metrics.TradeStats,
		EquityCurve:    e.sampleEquityCurve(metrics.Balances),
		Trades:         trades,
	}

	if e.cfg.LegacyMetrics {
		result.MaxDrawdown = legacyMinDrawdown + rng.Float64()*(legacyMaxDrawdown-legacyMinDrawdown)
		result.SharpeRatio = legacyMinSharpe + rng.Float64()*(legacyMaxSharpe-legacyMinSharpe)
	}

	if err := checkFinite(result); err != nil {
		return nil, err
	}
	return result, nil
}

// simulateTrade builds ledger entry i. The close price is derived from the open
// price, side and profit so that the price move always agrees with the outcome.
func (e *Engine) simulateTrade(rng ports.Rand, req domain.BacktestRequest, i int, win bool) domain.SimulatedTrade {
	side := domain.Buy
	if rng.IntN(2) == 1 {
		side = domain.Sell
	}

	openPrice := roundPrice(minOpenPrice + rng.Float64()*(maxOpenPrice-minOpenPrice))

	var profit float64
	if win {
		profit = minWinProfit + rng.Float64()*(maxWinProfit-minWinProfit)
	} else {
		profit = minLossProfit + rng.Float64()*(maxLossProfit-minLossProfit)
	}
	profit = decimal.NewFromFloat(profit).Round(2).InexactFloat64()

	move := profit / (e.cfg.Volume * e.cfg.ContractSize)
	closePrice := roundPrice(openPrice + side.Direction()*move)

	openTime := req.StartDate.Add(time.Duration(i) * e.cfg.TradeDuration)
	return domain.SimulatedTrade{
		ID:         strconv.Itoa(i + 1),
		Symbol:     req.Symbol,
		Side:       side,
		OpenPrice:  openPrice,
		ClosePrice: closePrice,
		Volume:     e.cfg.Volume,
		Profit:     profit,
		OpenTime:   openTime,
		CloseTime:  openTime.Add(e.cfg.TradeDuration),
	}
}

// sampleEquityCurve keeps the initial balance and every Nth post-trade balance.
func (e *Engine) sampleEquityCurve(balances []float64) []float64 {
	curve := make([]float64, 0, len(balances)/e.cfg.EquitySampleEvery+1)
	curve = append(curve, balances[0])
	for n := e.cfg.EquitySampleEvery; n < len(balances); n += e.cfg.EquitySampleEvery {
		curve = append(curve, balances[n])
	}
	return curve
}

func roundPrice(p float64) float64 {
	return decimal.NewFromFloat(p).Round(5).InexactFloat64()
}

func checkFinite(r *domain.BacktestResult) error {
	values := map[string]float64{
		"finalBalance":       r.FinalBalance,
		"totalProfit":        r.TotalProfit,
		"winRate":            r.WinRate,
		"maxDrawdown":        r.MaxDrawdown,
		"sharpeRatio":        r.SharpeRatio,
		"profitFactor":       r.ProfitFactor,
		"expectancy":         r.Stats.Expectancy,
		"returnOnInvestment": r.Stats.ReturnOnInvestment,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ports.ErrInternalSimulation, name)
		}
	}
	return nil
}
