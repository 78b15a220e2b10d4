package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rigaud3000/StarTrader/config"
	"github.com/Rigaud3000/StarTrader/internal/adapters/barexport"
	"github.com/Rigaud3000/StarTrader/internal/adapters/logger"
	"github.com/Rigaud3000/StarTrader/internal/adapters/memory"
	"github.com/Rigaud3000/StarTrader/internal/adapters/mlpredictor"
	"github.com/Rigaud3000/StarTrader/internal/adapters/mt5mock"
	"github.com/Rigaud3000/StarTrader/internal/adapters/sqlite"
	"github.com/Rigaud3000/StarTrader/internal/app"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/risk"
	"github.com/Rigaud3000/StarTrader/internal/strategy"
	"github.com/Rigaud3000/StarTrader/internal/strategy/backtesting"
)

// application is the wired service plus everything that must be released on exit.
type application struct {
	cfg     *config.Config
	logger  ports.Logger
	service *app.TradingService
	closers []func() error
}

func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func newLogger(cfg *config.Config) (ports.Logger, func() error, error) {
	if cfg.LogFormat == "json" {
		zl, err := logger.NewZapLogger(cfg.LogLevel, "startrader")
		if err != nil {
			return nil, nil, fmt.Errorf("init zap logger: %w", err)
		}
		return zl, func() error { _ = zl.Sync(); return nil }, nil
	}
	return logger.NewStdLogger(cfg.LogLevel), func() error { return nil }, nil
}

func newStore(cfg *config.Config, log ports.Logger) (ports.Store, error) {
	if cfg.StoreDriver == config.StoreSQLite {
		return sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: logger.Named(log, "store")})
	}
	return memory.NewStore(), nil
}

// buildApplication wires every adapter into the trading service.
func buildApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	a := &application{cfg: cfg}

	// 1. Logger
	log, syncLog, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a.logger = log
	a.closers = append(a.closers, syncLog)
	log.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 2. Store
	store, err := newStore(cfg, log)
	if err != nil {
		log.Error(ctx, err, "Failed to initialize store", map[string]interface{}{"driver": cfg.StoreDriver})
		return nil, fmt.Errorf("init %s store: %w", cfg.StoreDriver, err)
	}
	a.closers = append(a.closers, store.Close)
	log.Info(ctx, "Store initialized", map[string]interface{}{"driver": cfg.StoreDriver})

	// 3. Side channel and ML gate
	exporter, err := barexport.New(cfg.BarsExportFormat, cfg.BarsExportPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	predictor, err := mlpredictor.New(mlpredictor.Config{
		Python:  cfg.MLPython,
		Script:  cfg.MLScript,
		Timeout: cfg.MLTimeout,
		MaxBars: cfg.MLMaxBars,
	}, logger.Named(log, "ml"))
	if err != nil {
		a.Close()
		return nil, err
	}

	// 4. Strategy, risk and terminal
	evaluator, err := strategy.New(strategy.Config{
		ShortTermMAPeriod: cfg.StrategyShortMAPeriod,
		LongTermMAPeriod:  cfg.StrategyLongMAPeriod,
		RSIPeriod:         cfg.StrategyRSIPeriod,
		RSIOverbought:     cfg.StrategyRSIOverbought,
		RSIOversold:       cfg.StrategyRSIOversold,
		ATRPeriod:         cfg.StrategyATRPeriod,
	}, logger.Named(log, "strategy"))
	if err != nil {
		a.Close()
		return nil, err
	}
	terminal, err := mt5mock.New(mt5mock.Config{
		InitialBalance: cfg.MT5InitialBalance,
		Leverage:       cfg.MT5Leverage,
		Logger:         logger.Named(log, "mt5"),
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	// 5. Application service
	a.service, err = app.NewTradingService(app.Config{
		BarInterval:         cfg.BarInterval,
		MaxBars:             cfg.BarMaxCount,
		ConfidenceThreshold: cfg.MLConfidenceThreshold,
		SignalBars:          cfg.MLMaxBars,
	}, app.Dependencies{
		Logger:      log,
		Store:       store,
		Engine:      backtesting.NewEngine(backtesting.EngineConfig{LegacyMetrics: cfg.LegacyMetrics}),
		RandFactory: backtesting.NewRandFactory(cfg.RandomSeed),
		Exporter:    exporter,
		Predictor:   predictor,
		Evaluator:   evaluator,
		Terminal:    terminal,
		Risk:        risk.NewRiskManager(risk.DefaultRiskConfig()),
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	// 6. Seed strategies
	if cfg.StrategiesSeedFile != "" {
		seeds, err := config.LoadStrategySeeds(cfg.StrategiesSeedFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		if _, err := a.service.SeedStrategies(ctx, seeds); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}
