package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/strategy/backtesting"
)

// EvaluateSignal runs the indicator strategy on the latest bars of symbol,
// gates the signal on the predictor's confidence and, when approved and the
// terminal is connected, places a market order sized by the risk settings.
// Every decision is journaled. An empty symbol uses the default from settings.
func (s *TradingService) EvaluateSignal(ctx context.Context, symbol string) (*domain.Decision, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		symbol = settings.DefaultSymbol
	}

	bars, err := s.signalBars(ctx, symbol)
	if err != nil {
		return nil, err
	}

	signal, err := s.evaluator.Evaluate(ctx, symbol, bars)
	if err != nil {
		s.logger.Error(ctx, err, "Signal evaluation failed", map[string]interface{}{"symbol": symbol})
		return nil, err
	}

	decision := &domain.Decision{Signal: signal}
	if !signal.HasSignal() {
		decision.Reason = "no signal: " + signal.Reason
		s.journal(ctx, domain.JournalSignal, symbol, decision.Reason)
		return decision, nil
	}

	s.gate(ctx, settings, bars, decision)
	if !decision.Approved {
		s.journal(ctx, domain.JournalSignal, symbol, fmt.Sprintf("%s signal rejected: %s", signal.Side, decision.Reason))
		return decision, nil
	}
	s.journal(ctx, domain.JournalSignal, symbol, fmt.Sprintf("%s signal approved at %.5f: %s", signal.Side, signal.Price, decision.Reason))

	if err := s.execute(ctx, settings, decision); err != nil {
		return nil, err
	}
	return decision, nil
}

// signalBars returns the retained bars of the last backtest when they belong
// to symbol and are long enough, otherwise a fresh series ending now.
func (s *TradingService) signalBars(ctx context.Context, symbol string) ([]domain.Bar, error) {
	latestSym, bars := s.LatestBars()
	if latestSym == symbol && len(bars) >= s.evaluator.RequiredBars() {
		return bars, nil
	}

	end := s.now().Truncate(s.cfg.BarInterval)
	start := end.Add(-s.cfg.BarInterval * time.Duration(s.cfg.SignalBars))
	bars, err := backtesting.SynthesizeBars(ctx, s.newRand(), symbol, start, end, s.cfg.BarInterval, s.cfg.MaxBars)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Synthesized bars for signal evaluation", map[string]interface{}{"symbol": symbol, "count": len(bars)})
	return bars, nil
}

// gate fills Confidence, Threshold, Approved and Reason of the decision.
func (s *TradingService) gate(ctx context.Context, settings domain.Settings, bars []domain.Bar, d *domain.Decision) {
	if !settings.MLEnabled || s.predictor == nil {
		d.Approved = true
		d.Confidence = 1
		d.Reason = "ML gate disabled"
		return
	}

	d.Threshold = settings.ConfidenceThreshold
	if d.Threshold <= 0 {
		d.Threshold = s.cfg.ConfidenceThreshold
	}

	pred, err := s.predictor.Predict(ctx, bars)
	if err != nil {
		s.logger.Warn(ctx, "Predictor unavailable, using fallback confidence", map[string]interface{}{"error": err.Error()})
		s.journal(ctx, domain.JournalError, d.Signal.Symbol, fmt.Sprintf("ML predictor unavailable: %v", err))
	}
	if pred != nil {
		d.Confidence = pred.Confidence
	}

	d.Approved = d.Confidence >= d.Threshold
	if d.Approved {
		d.Reason = fmt.Sprintf("confidence %.2f meets threshold %.2f", d.Confidence, d.Threshold)
	} else {
		d.Reason = fmt.Sprintf("confidence %.2f below threshold %.2f", d.Confidence, d.Threshold)
	}
	s.logger.Info(ctx, "Confidence gate evaluated", map[string]interface{}{
		"symbol":     d.Signal.Symbol,
		"side":       string(d.Signal.Side),
		"confidence": d.Confidence,
		"threshold":  d.Threshold,
		"approved":   d.Approved,
	})
}

// execute places the order for an approved decision and stores the trade.
// Risk rejections, a disconnected terminal and rejected orders leave the
// decision unexecuted without failing the call.
func (s *TradingService) execute(ctx context.Context, settings domain.Settings, d *domain.Decision) error {
	symbol := d.Signal.Symbol

	if status := s.terminal.Status(ctx); status.State != domain.StateConnected {
		d.Reason += "; not executed: terminal not connected"
		return nil
	}

	openTrades, err := s.store.CountOpenTrades(ctx)
	if err != nil {
		return fmt.Errorf("count open trades: %w", err)
	}
	if err := s.risk.ValidateNewTrade(ctx, settings, openTrades); err != nil {
		d.Reason += "; not executed: " + err.Error()
		s.logger.Warn(ctx, "Trade blocked by risk limits", map[string]interface{}{"symbol": symbol, "openTrades": openTrades})
		s.journal(ctx, domain.JournalSignal, symbol, "Trade blocked by risk limits: "+err.Error())
		return nil
	}

	account, err := s.terminal.AccountInfo(ctx)
	if err != nil {
		return fmt.Errorf("read account: %w", err)
	}
	volume := s.risk.GetPositionSize(ctx, account.Balance, settings.RiskPercent, d.Signal.ATR)

	resp, err := s.terminal.PlaceMarketOrder(ctx, symbol, d.Signal.Side, volume, d.Signal.Price)
	if errors.Is(err, ports.ErrOrderRejected) || errors.Is(err, ports.ErrNotConnected) {
		d.Reason += "; not executed: " + err.Error()
		s.logger.Warn(ctx, "Order not placed", map[string]interface{}{"symbol": symbol, "volume": volume, "error": err.Error()})
		s.journal(ctx, domain.JournalError, symbol, "Order not placed: "+err.Error())
		return nil
	}
	if err != nil {
		s.logger.Error(ctx, err, "Failed to place market order", map[string]interface{}{"symbol": symbol})
		return fmt.Errorf("place market order: %w", err)
	}

	trade := &domain.Trade{
		Symbol:     resp.Symbol,
		Side:       resp.Side,
		Volume:     resp.Volume,
		OpenPrice:  resp.Price,
		Confidence: d.Confidence,
		Status:     domain.TradeStatusOpen,
		OpenTime:   s.now(),
	}
	if err := s.store.CreateTrade(ctx, trade); err != nil {
		s.logger.Error(ctx, err, "Failed to store trade", map[string]interface{}{"orderID": resp.OrderID})
		return fmt.Errorf("store trade: %w", err)
	}

	d.Executed = true
	d.Trade = trade
	s.logger.Info(ctx, "Trade executed", map[string]interface{}{
		"tradeID":    trade.ID,
		"orderID":    resp.OrderID,
		"symbol":     trade.Symbol,
		"side":       string(trade.Side),
		"volume":     trade.Volume,
		"price":      trade.OpenPrice,
		"stopLoss":   s.risk.GetStopLoss(trade.OpenPrice, d.Signal.ATR, trade.Side),
		"takeProfit": s.risk.GetTakeProfit(trade.OpenPrice, d.Signal.ATR, trade.Side),
	})
	s.journal(ctx, domain.JournalTrade, symbol, fmt.Sprintf("%s %.2f lots of %s at %.5f (order %s)",
		trade.Side, trade.Volume, trade.Symbol, trade.OpenPrice, resp.OrderID))
	return nil
}
