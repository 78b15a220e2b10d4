package risk

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/shopspring/decimal"
)

// RiskConfig holds the static part of risk management. The per-user limits
// (risk percent, max open trades) come from domain.Settings.
type RiskConfig struct {
	ContractSize       float64 // Units per lot
	MinVolume          float64 // Smallest tradable lot size
	MaxVolume          float64 // Largest lot size a single order may use
	VolumeStep         int32   // Decimal places of the lot size
	StopLossATRMultiple float64 // Stop distance in ATRs
	TakeProfitRR       float64 // Take profit distance as a multiple of the stop distance
}

// DefaultRiskConfig returns the sizing used for FX pairs.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		ContractSize:       100_000,
		MinVolume:          0.01,
		MaxVolume:          10,
		VolumeStep:         2,
		StopLossATRMultiple: 1.5,
		TakeProfitRR:       2,
	}
}

// RiskManager implements position sizing and exposure limits
type RiskManager struct {
	config RiskConfig

	mu    sync.Mutex
	stats RiskStats
}

// RiskStats holds risk management statistics
type RiskStats struct {
	TradesApproved int
	TradesRejected int
	LastVolume     float64
}

// NewRiskManager creates a new risk manager instance
func NewRiskManager(config RiskConfig) *RiskManager {
	def := DefaultRiskConfig()
	if config.ContractSize <= 0 {
		config.ContractSize = def.ContractSize
	}
	if config.MinVolume <= 0 {
		config.MinVolume = def.MinVolume
	}
	if config.MaxVolume < config.MinVolume {
		config.MaxVolume = math.Max(def.MaxVolume, config.MinVolume)
	}
	if config.VolumeStep <= 0 {
		config.VolumeStep = def.VolumeStep
	}
	if config.StopLossATRMultiple <= 0 {
		config.StopLossATRMultiple = def.StopLossATRMultiple
	}
	if config.TakeProfitRR <= 0 {
		config.TakeProfitRR = def.TakeProfitRR
	}
	return &RiskManager{config: config}
}

// ValidateNewTrade checks whether another trade may be opened.
func (r *RiskManager) ValidateNewTrade(ctx context.Context, settings domain.Settings, openTrades int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if settings.MaxOpenTrades > 0 && openTrades >= settings.MaxOpenTrades {
		r.stats.TradesRejected++
		return fmt.Errorf("%w: %d open trades, maximum is %d", ports.ErrRiskLimitExceeded, openTrades, settings.MaxOpenTrades)
	}
	if settings.RiskPercent <= 0 {
		r.stats.TradesRejected++
		return fmt.Errorf("%w: risk percent must be positive", ports.ErrRiskLimitExceeded)
	}
	r.stats.TradesApproved++
	return nil
}

// GetPositionSize calculates the lot size that risks riskPercent of the balance
// if price moves by one stop distance (StopLossATRMultiple * atr) against the trade.
// The result is truncated to the volume step and clamped to [MinVolume, MaxVolume].
// Without a usable ATR the minimum volume is returned.
func (r *RiskManager) GetPositionSize(ctx context.Context, accountBalance, riskPercent, atr float64) float64 {
	volume := r.config.MinVolume
	stopDistance := atr * r.config.StopLossATRMultiple
	if stopDistance > 0 && accountBalance > 0 && riskPercent > 0 {
		riskAmount := decimal.NewFromFloat(accountBalance).Mul(decimal.NewFromFloat(riskPercent)).Div(decimal.NewFromInt(100))
		perLot := decimal.NewFromFloat(stopDistance).Mul(decimal.NewFromFloat(r.config.ContractSize))
		volume = riskAmount.Div(perLot).Truncate(r.config.VolumeStep).InexactFloat64()
	}
	volume = math.Min(math.Max(volume, r.config.MinVolume), r.config.MaxVolume)

	r.mu.Lock()
	r.stats.LastVolume = volume
	r.mu.Unlock()
	return volume
}

// GetStopLoss calculates the stop loss price for a position
func (r *RiskManager) GetStopLoss(entryPrice, atr float64, side domain.OrderSide) float64 {
	return entryPrice - side.Direction()*atr*r.config.StopLossATRMultiple
}

// GetTakeProfit calculates the take profit price for a position
func (r *RiskManager) GetTakeProfit(entryPrice, atr float64, side domain.OrderSide) float64 {
	return entryPrice + side.Direction()*atr*r.config.StopLossATRMultiple*r.config.TakeProfitRR
}

// GetStats returns a copy of the current risk management statistics
func (r *RiskManager) GetStats() RiskStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
