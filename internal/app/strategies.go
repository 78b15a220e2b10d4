package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
)

func validateStrategy(st *domain.Strategy) error {
	if st == nil || strings.TrimSpace(st.Name) == "" {
		return ports.NewValidationError("name")
	}
	return nil
}

// CreateStrategy stores a new strategy. Name is required.
func (s *TradingService) CreateStrategy(ctx context.Context, st *domain.Strategy) error {
	if err := validateStrategy(st); err != nil {
		return err
	}
	if err := s.store.Create(ctx, st); err != nil {
		return fmt.Errorf("create strategy: %w", err)
	}
	s.logger.Info(ctx, "Strategy created", map[string]interface{}{"strategyID": st.ID, "name": st.Name})
	s.journal(ctx, domain.JournalInfo, st.Symbol, fmt.Sprintf("Strategy %q created", st.Name))
	return nil
}

// GetStrategy returns a strategy or ErrNotFound.
func (s *TradingService) GetStrategy(ctx context.Context, strategyID string) (*domain.Strategy, error) {
	st, err := s.store.FindByID(ctx, strategyID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: strategy %s", ports.ErrNotFound, strategyID)
	}
	return st, nil
}

// ListStrategies returns all strategies, oldest first.
func (s *TradingService) ListStrategies(ctx context.Context) ([]*domain.Strategy, error) {
	return s.store.FindAll(ctx)
}

// UpdateStrategy replaces the editable fields of an existing strategy.
func (s *TradingService) UpdateStrategy(ctx context.Context, strategyID string, changes *domain.Strategy) (*domain.Strategy, error) {
	if err := validateStrategy(changes); err != nil {
		return nil, err
	}
	st, err := s.GetStrategy(ctx, strategyID)
	if err != nil {
		return nil, err
	}

	st.Name = changes.Name
	st.Description = changes.Description
	st.Symbol = changes.Symbol
	st.Timeframe = changes.Timeframe
	st.Code = changes.Code
	st.Active = changes.Active

	if err := s.store.Update(ctx, st); err != nil {
		return nil, fmt.Errorf("update strategy: %w", err)
	}
	s.logger.Info(ctx, "Strategy updated", map[string]interface{}{"strategyID": st.ID})
	return st, nil
}

// DeleteStrategy removes a strategy. Stored backtests of it are kept.
func (s *TradingService) DeleteStrategy(ctx context.Context, strategyID string) error {
	if err := s.store.Delete(ctx, strategyID); err != nil {
		return err
	}
	s.logger.Info(ctx, "Strategy deleted", map[string]interface{}{"strategyID": strategyID})
	s.journal(ctx, domain.JournalInfo, "", fmt.Sprintf("Strategy %s deleted", strategyID))
	return nil
}

// SeedStrategies stores seeds when the store holds no strategy yet and
// returns how many were created.
func (s *TradingService) SeedStrategies(ctx context.Context, seeds []domain.Strategy) (int, error) {
	existing, err := s.store.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.logger.Debug(ctx, "Strategies already present, skipping seed", map[string]interface{}{"count": len(existing)})
		return 0, nil
	}

	created := 0
	for _, seed := range seeds {
		if err := s.CreateStrategy(ctx, &seed); err != nil {
			return created, fmt.Errorf("seed strategy %q: %w", seed.Name, err)
		}
		created++
	}
	s.logger.Info(ctx, "Strategies seeded", map[string]interface{}{"count": created})
	return created, nil
}

// GetSettings returns the stored settings or the defaults.
func (s *TradingService) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.store.GetSettings(ctx)
}

// SaveSettings validates and stores the settings.
func (s *TradingService) SaveSettings(ctx context.Context, settings domain.Settings) error {
	var invalid []string
	if settings.RiskPercent <= 0 || settings.RiskPercent > 100 {
		invalid = append(invalid, "riskPercent")
	}
	if settings.MaxOpenTrades < 0 {
		invalid = append(invalid, "maxOpenTrades")
	}
	if settings.ConfidenceThreshold < 0 || settings.ConfidenceThreshold > 1 {
		invalid = append(invalid, "confidenceThreshold")
	}
	if strings.TrimSpace(settings.DefaultSymbol) == "" {
		invalid = append(invalid, "defaultSymbol")
	}
	if strings.TrimSpace(settings.DefaultTimeframe) == "" {
		invalid = append(invalid, "defaultTimeframe")
	}
	if len(invalid) > 0 {
		return ports.NewValidationError(invalid...)
	}

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.Info(ctx, "Settings saved", map[string]interface{}{
		"riskPercent":         settings.RiskPercent,
		"maxOpenTrades":       settings.MaxOpenTrades,
		"mlEnabled":           settings.MLEnabled,
		"confidenceThreshold": settings.ConfidenceThreshold,
	})
	s.journal(ctx, domain.JournalInfo, "", "Settings updated")
	return nil
}
