package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/strategy/indicators"
)

// Config holds parameters for the crossover strategy.
type Config struct {
	ShortTermMAPeriod int     // e.g., 10
	LongTermMAPeriod  int     // e.g., 30
	RSIPeriod         int     // e.g., 14
	RSIOverbought     float64 // e.g., 70.0
	RSIOversold       float64 // e.g., 30.0
	ATRPeriod         int     // e.g., 14
}

// DefaultConfig returns the SMA(10)/SMA(30) crossover with RSI(14) and ATR(14).
func DefaultConfig() Config {
	return Config{
		ShortTermMAPeriod: 10,
		LongTermMAPeriod:  30,
		RSIPeriod:         14,
		RSIOverbought:     70.0,
		RSIOversold:       30.0,
		ATRPeriod:         14,
	}
}

// Strategy evaluates a moving average crossover filtered by RSI.
// It implements ports.SignalEvaluator.
type Strategy struct {
	cfg    Config
	logger ports.Logger

	fast *indicators.MovingAverage
	slow *indicators.MovingAverage
	rsi  *indicators.RSI
	atr  *indicators.ATR
}

var _ ports.SignalEvaluator = (*Strategy)(nil)

// New creates a new Strategy instance.
func New(cfg Config, logger ports.Logger) (*Strategy, error) {
	if logger == nil {
		return nil, errors.New("logger is required for strategy")
	}
	if cfg.ShortTermMAPeriod <= 0 || cfg.LongTermMAPeriod <= 0 || cfg.RSIPeriod <= 0 || cfg.ATRPeriod <= 0 {
		return nil, fmt.Errorf("%w: strategy periods must be positive", ports.ErrConfigurationError)
	}
	if cfg.ShortTermMAPeriod >= cfg.LongTermMAPeriod {
		return nil, fmt.Errorf("%w: short term MA period must be less than long term MA period", ports.ErrConfigurationError)
	}
	if cfg.RSIOversold >= cfg.RSIOverbought {
		return nil, fmt.Errorf("%w: RSI oversold level must be below overbought level", ports.ErrConfigurationError)
	}
	return &Strategy{
		cfg:    cfg,
		logger: logger,
		fast: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.ShortTermMAPeriod},
			Type:            indicators.SimpleMovingAverage,
		}),
		slow: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.LongTermMAPeriod},
			Type:            indicators.SimpleMovingAverage,
		}),
		rsi: indicators.NewRSI(indicators.RSIConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.RSIPeriod},
			Overbought:      cfg.RSIOverbought,
			Oversold:        cfg.RSIOversold,
		}),
		atr: indicators.NewATR(indicators.ATRConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.ATRPeriod},
		}),
	}, nil
}

// RequiredBars returns the minimum number of bars needed by every indicator.
func (s *Strategy) RequiredBars() int {
	required := 0
	for _, ind := range []indicators.Indicator{s.fast, s.slow, s.rsi, s.atr} {
		required = max(required, ind.RequiredDataPoints())
	}
	// Slow average plus one bar of lookback.
	return max(required, s.cfg.LongTermMAPeriod+1)
}

// Evaluate computes the indicators on bars and returns the signal for the last bar.
// BUY when the fast SMA is above the slow SMA and RSI is below the overbought level;
// SELL when fast is below slow and RSI is above the oversold level.
func (s *Strategy) Evaluate(ctx context.Context, symbol string, bars []domain.Bar) (domain.Signal, error) {
	required := s.RequiredBars()
	if len(bars) < required {
		s.logger.Debug(ctx, "Not enough bar data for strategy evaluation",
			map[string]interface{}{"available": len(bars), "required": required})
		return domain.Signal{}, fmt.Errorf("%w: need %d, got %d", ports.ErrInsufficientBarsCount, required, len(bars))
	}

	last := bars[len(bars)-1]
	signal := domain.Signal{
		Symbol:    symbol,
		Price:     last.Close,
		Generated: time.Now().UTC(),
	}

	fast, err := s.fast.Series(ctx, bars)
	if err != nil {
		return domain.Signal{}, s.indicatorError(ctx, s.fast, err)
	}
	slow, err := s.slow.Series(ctx, bars)
	if err != nil {
		return domain.Signal{}, s.indicatorError(ctx, s.slow, err)
	}
	if signal.RSI, err = s.rsi.Calculate(ctx, bars); err != nil {
		return domain.Signal{}, s.indicatorError(ctx, s.rsi, err)
	}
	if signal.ATR, err = s.atr.Calculate(ctx, bars); err != nil {
		return domain.Signal{}, s.indicatorError(ctx, s.atr, err)
	}

	// Series end on the same bar; RequiredBars guarantees two slow values.
	signal.FastMA, signal.SlowMA = fast[len(fast)-1], slow[len(slow)-1]
	prevSpread := fast[len(fast)-2] - slow[len(slow)-2]
	spread := signal.FastMA - signal.SlowMA
	signal.Crossover = (prevSpread <= 0 && spread > 0) || (prevSpread >= 0 && spread < 0)

	switch {
	case signal.FastMA > signal.SlowMA && !s.rsi.IsOverbought(signal.RSI):
		signal.Side = domain.Buy
		signal.Reason = "fast MA above slow MA, RSI not overbought"
	case signal.FastMA < signal.SlowMA && !s.rsi.IsOversold(signal.RSI):
		signal.Side = domain.Sell
		signal.Reason = "fast MA below slow MA, RSI not oversold"
	case signal.FastMA > signal.SlowMA:
		signal.Reason = "uptrend filtered: RSI overbought"
	case signal.FastMA < signal.SlowMA:
		signal.Reason = "downtrend filtered: RSI oversold"
	default:
		signal.Reason = "moving averages flat"
	}

	if signal.Crossover && signal.HasSignal() {
		signal.Reason = "crossover: " + signal.Reason
	}

	fields := map[string]interface{}{
		"symbol":    symbol,
		"price":     signal.Price,
		"fastMA":    signal.FastMA,
		"slowMA":    signal.SlowMA,
		"rsi":       signal.RSI,
		"atr":       signal.ATR,
		"crossover": signal.Crossover,
		"side":      string(signal.Side),
	}
	if signal.HasSignal() {
		s.logger.Info(ctx, "Signal conditions met", fields)
	} else {
		s.logger.Debug(ctx, "Signal conditions not met", fields)
	}
	return signal, nil
}

func (s *Strategy) indicatorError(ctx context.Context, ind indicators.Indicator, err error) error {
	s.logger.Error(ctx, err, "Failed to calculate indicator", map[string]interface{}{"indicator": ind.Name()})
	return fmt.Errorf("calculate %s: %w", ind.Name(), err)
}
