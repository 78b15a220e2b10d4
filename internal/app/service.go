package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/risk"
	"github.com/Rigaud3000/StarTrader/internal/strategy/backtesting"
)

const (
	defaultJournalLimit = 50
	defaultTradesLimit  = 100
)

// Config holds the service-level settings that are not user tunable.
type Config struct {
	BarInterval time.Duration
	// MaxBars caps a synthesized series; zero means backtesting.DefaultMaxBars.
	MaxBars int
	// ConfidenceThreshold applies when the stored settings carry no threshold.
	ConfidenceThreshold float64
	// SignalBars is how many bars are synthesized for a signal when no backtest
	// has produced bars for the symbol yet.
	SignalBars int
}

// Dependencies are the ports the service orchestrates. Exporter and Predictor
// are optional.
type Dependencies struct {
	Logger      ports.Logger
	Store       ports.Store
	Engine      *backtesting.Engine
	RandFactory ports.RandFactory
	Exporter    ports.BarExporter
	Predictor   ports.ConfidencePredictor
	Evaluator   ports.SignalEvaluator
	Terminal    ports.Terminal
	Risk        *risk.RiskManager
}

// TradingService orchestrates backtests, strategies, the signal pipeline and
// the mock terminal for the dashboard.
type TradingService struct {
	cfg       Config
	logger    ports.Logger
	store     ports.Store
	engine    *backtesting.Engine
	newRand   ports.RandFactory
	exporter  ports.BarExporter
	predictor ports.ConfidencePredictor
	evaluator ports.SignalEvaluator
	terminal  ports.Terminal
	risk      *risk.RiskManager
	now       func() time.Time

	// State fields
	mu         sync.Mutex // Protects the latest bar series
	latestBars []domain.Bar
	latestSym  string
}

// NewTradingService creates a new application service instance.
func NewTradingService(cfg Config, deps Dependencies) (*TradingService, error) {
	if deps.Logger == nil || deps.Store == nil || deps.Engine == nil || deps.RandFactory == nil ||
		deps.Evaluator == nil || deps.Terminal == nil || deps.Risk == nil {
		return nil, fmt.Errorf("%w: missing required dependencies for TradingService", ports.ErrConfigurationError)
	}
	if cfg.BarInterval <= 0 {
		cfg.BarInterval = backtesting.DefaultBarInterval
	}
	if cfg.SignalBars < deps.Evaluator.RequiredBars() {
		cfg.SignalBars = max(100, deps.Evaluator.RequiredBars())
	}

	return &TradingService{
		cfg:       cfg,
		logger:    deps.Logger,
		store:     deps.Store,
		engine:    deps.Engine,
		newRand:   deps.RandFactory,
		exporter:  deps.Exporter,
		predictor: deps.Predictor,
		evaluator: deps.Evaluator,
		terminal:  deps.Terminal,
		risk:      deps.Risk,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// RunBacktest synthesizes bars for the request, simulates the trade ledger and
// stores the result. The bars are exported to the side channel and retained for
// the signal pipeline once the run has succeeded.
//
// Bars and ledger draw from separate sources, so with a fixed seed the ledger
// matches a one-run sweep with the same seed.
func (s *TradingService) RunBacktest(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error) {
	if err := backtesting.ValidateRequest(req); err != nil {
		return nil, err
	}

	// Resolve the strategy before paying for bar synthesis.
	info, err := s.lookupStrategy(ctx, req.StrategyID)
	if err != nil {
		return nil, fmt.Errorf("%w: strategy lookup: %w", ports.ErrInternalSimulation, err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrStrategyNotFound, req.StrategyID)
	}

	bars, err := backtesting.SynthesizeBars(ctx, s.newRand(), req.Symbol, req.StartDate, req.EndDate, s.cfg.BarInterval, s.cfg.MaxBars)
	if err != nil {
		return nil, err
	}

	resolved := func(context.Context, string) (*domain.StrategyInfo, error) { return info, nil }
	result, err := s.engine.Run(ctx, s.newRand(), req, resolved)
	if err != nil {
		s.logger.Warn(ctx, "Backtest failed", map[string]interface{}{
			"strategyID": req.StrategyID,
			"symbol":     req.Symbol,
			"error":      err.Error(),
		})
		return nil, err
	}

	if err := s.store.CreateBacktest(ctx, result); err != nil {
		s.logger.Error(ctx, err, "Failed to store backtest result", map[string]interface{}{"strategyID": req.StrategyID})
		return nil, fmt.Errorf("store backtest result: %w", err)
	}

	s.exportBars(ctx, bars)
	s.retainBars(req.Symbol, bars)

	s.logger.Info(ctx, "Backtest completed", map[string]interface{}{
		"backtestID":   result.ID,
		"strategy":     result.StrategyName,
		"symbol":       result.Symbol,
		"bars":         len(bars),
		"totalTrades":  result.TotalTrades,
		"winRate":      result.WinRate,
		"finalBalance": result.FinalBalance,
	})
	s.journal(ctx, domain.JournalBacktest, result.Symbol, fmt.Sprintf(
		"Backtest of %s finished: %d trades, win rate %.1f%%, profit %.2f",
		result.StrategyName, result.TotalTrades, result.WinRate, result.TotalProfit))

	return result, nil
}

// SynthesizeBars produces a bar series without running or storing a backtest.
func (s *TradingService) SynthesizeBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	bars, err := backtesting.SynthesizeBars(ctx, s.newRand(), symbol, start, end, s.cfg.BarInterval, s.cfg.MaxBars)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Bars synthesized", map[string]interface{}{"symbol": symbol, "count": len(bars)})
	return bars, nil
}

// GetBacktest returns a stored result or ErrNotFound.
func (s *TradingService) GetBacktest(ctx context.Context, backtestID string) (*domain.BacktestResult, error) {
	res, err := s.store.FindBacktestByID(ctx, backtestID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: backtest %s", ports.ErrNotFound, backtestID)
	}
	return res, nil
}

// ListBacktests returns stored results, newest first. An empty strategyID lists all.
func (s *TradingService) ListBacktests(ctx context.Context, strategyID string) ([]*domain.BacktestResult, error) {
	if strategyID != "" {
		return s.store.FindBacktestsByStrategy(ctx, strategyID)
	}
	return s.store.FindBacktests(ctx)
}

// LatestBars returns a copy of the bars of the most recent backtest.
func (s *TradingService) LatestBars() (string, []domain.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestSym, append([]domain.Bar(nil), s.latestBars...)
}

// Journal returns the most recent journal entries, newest first.
func (s *TradingService) Journal(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	return s.store.RecentEntries(ctx, limit)
}

// Trades returns the most recent executed trades, newest first.
func (s *TradingService) Trades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	if limit <= 0 {
		limit = defaultTradesLimit
	}
	return s.store.FindTrades(ctx, limit)
}

func (s *TradingService) lookupStrategy(ctx context.Context, strategyID string) (*domain.StrategyInfo, error) {
	st, err := s.store.FindByID(ctx, strategyID)
	if err != nil || st == nil {
		return nil, err
	}
	return &domain.StrategyInfo{ID: st.ID, Name: st.Name}, nil
}

// exportBars writes the side channel. Failures are logged, not returned: the
// result has already been stored.
func (s *TradingService) exportBars(ctx context.Context, bars []domain.Bar) {
	if s.exporter == nil {
		return
	}
	if err := s.exporter.Export(bars); err != nil {
		s.logger.Error(ctx, err, "Failed to export bars", map[string]interface{}{"path": s.exporter.Path()})
		return
	}
	s.logger.Debug(ctx, "Bars exported", map[string]interface{}{"path": s.exporter.Path(), "count": len(bars)})
}

func (s *TradingService) retainBars(symbol string, bars []domain.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestSym = symbol
	s.latestBars = bars
}

// journal records an entry; a failing journal never fails the operation.
func (s *TradingService) journal(ctx context.Context, typ domain.JournalEntryType, symbol, msg string) {
	entry := &domain.JournalEntry{Type: typ, Symbol: symbol, Message: msg}
	if err := s.store.AddEntry(ctx, entry); err != nil {
		s.logger.Error(ctx, err, "Failed to write journal entry", map[string]interface{}{"type": string(typ)})
	}
}
