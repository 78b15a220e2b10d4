package ports

import (
	"context"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// StrategyRepository defines the interface for storing and retrieving strategies.
type StrategyRepository interface {
	// Create saves a new strategy, assigning its ID and timestamps.
	Create(ctx context.Context, s *domain.Strategy) error
	// Update modifies an existing strategy. Returns ErrNotFound if absent.
	Update(ctx context.Context, s *domain.Strategy) error
	// Delete removes a strategy. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
	// FindByID retrieves a strategy by ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, id string) (*domain.Strategy, error)
	// FindAll retrieves all strategies, ordered by creation time ascending.
	FindAll(ctx context.Context) ([]*domain.Strategy, error)
}

// BacktestRepository stores backtest results. Results are append-only.
type BacktestRepository interface {
	// CreateBacktest saves a result, assigning its ID and CreatedAt.
	CreateBacktest(ctx context.Context, r *domain.BacktestResult) error
	// FindBacktestByID returns nil, nil if not found.
	FindBacktestByID(ctx context.Context, id string) (*domain.BacktestResult, error)
	// FindBacktests returns all results, newest first.
	FindBacktests(ctx context.Context) ([]*domain.BacktestResult, error)
	// FindBacktestsByStrategy returns the results of one strategy, newest first.
	FindBacktestsByStrategy(ctx context.Context, strategyID string) ([]*domain.BacktestResult, error)
}

// JournalRepository stores journal entries.
type JournalRepository interface {
	// AddEntry saves an entry, assigning its ID and CreatedAt.
	AddEntry(ctx context.Context, e *domain.JournalEntry) error
	// RecentEntries returns up to limit entries, newest first.
	RecentEntries(ctx context.Context, limit int) ([]*domain.JournalEntry, error)
}

// TradeRepository stores trades executed on the terminal.
type TradeRepository interface {
	// CreateTrade saves a new trade, assigning its ID.
	CreateTrade(ctx context.Context, t *domain.Trade) error
	// FindTrades returns up to limit trades, newest first.
	FindTrades(ctx context.Context, limit int) ([]*domain.Trade, error)
	// CountOpenTrades counts trades with status "open".
	CountOpenTrades(ctx context.Context) (int, error)
}

// SettingsRepository stores the single settings record.
type SettingsRepository interface {
	// GetSettings returns the stored settings, or domain.DefaultSettings() if none were saved.
	GetSettings(ctx context.Context) (domain.Settings, error)
	// SaveSettings replaces the stored settings.
	SaveSettings(ctx context.Context, s domain.Settings) error
}

// Store groups every repository the application needs.
type Store interface {
	StrategyRepository
	BacktestRepository
	JournalRepository
	TradeRepository
	SettingsRepository
	Close() error
}

// StrategyLookup resolves a strategy identity for the backtest engine.
// It returns nil, nil when the strategy does not exist.
type StrategyLookup func(ctx context.Context, id string) (*domain.StrategyInfo, error)
