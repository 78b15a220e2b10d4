// Package memory is a process-local ports.Store. Data is lost on exit.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/id"
	"github.com/Rigaud3000/StarTrader/internal/ports"
)

// Store keeps every entity collection in maps owned by the instance.
// Values are copied in and out so callers never share memory with the store.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	strategies map[string]domain.Strategy
	backtests  map[string]domain.BacktestResult
	journal    []domain.JournalEntry
	trades     []domain.Trade
	settings   *domain.Settings
}

var _ ports.Store = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:        time.Now,
		strategies: make(map[string]domain.Strategy),
		backtests:  make(map[string]domain.BacktestResult),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) Create(ctx context.Context, st *domain.Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	st.ID = id.At(now)
	st.CreatedAt = now
	st.UpdatedAt = now
	s.strategies[st.ID] = *st
	return nil
}

func (s *Store) Update(ctx context.Context, st *domain.Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.strategies[st.ID]
	if !ok {
		return fmt.Errorf("strategy ID %s not found for update: %w", st.ID, ports.ErrNotFound)
	}
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = s.now().UTC()
	s.strategies[st.ID] = *st
	return nil
}

func (s *Store) Delete(ctx context.Context, strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.strategies[strategyID]; !ok {
		return fmt.Errorf("strategy ID %s not found for delete: %w", strategyID, ports.ErrNotFound)
	}
	delete(s.strategies, strategyID)
	return nil
}

func (s *Store) FindByID(ctx context.Context, strategyID string) (*domain.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.strategies[strategyID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// FindAll returns strategies oldest first. IDs are ULIDs, so ID order is creation order.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Strategy, 0, len(s.strategies))
	for _, st := range s.strategies {
		out = append(out, &st)
	}
	slices.SortFunc(out, func(a, b *domain.Strategy) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) CreateBacktest(ctx context.Context, r *domain.BacktestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	r.ID = id.At(now)
	r.CreatedAt = now
	s.backtests[r.ID] = cloneResult(*r)
	return nil
}

func (s *Store) FindBacktestByID(ctx context.Context, backtestID string) (*domain.BacktestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.backtests[backtestID]
	if !ok {
		return nil, nil
	}
	out := cloneResult(r)
	return &out, nil
}

func (s *Store) FindBacktests(ctx context.Context) ([]*domain.BacktestResult, error) {
	return s.filterBacktests(func(domain.BacktestResult) bool { return true }), nil
}

func (s *Store) FindBacktestsByStrategy(ctx context.Context, strategyID string) ([]*domain.BacktestResult, error) {
	return s.filterBacktests(func(r domain.BacktestResult) bool { return r.StrategyID == strategyID }), nil
}

func (s *Store) filterBacktests(keep func(domain.BacktestResult) bool) []*domain.BacktestResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.BacktestResult, 0)
	for _, r := range s.backtests {
		if keep(r) {
			c := cloneResult(r)
			out = append(out, &c)
		}
	}
	// newest first
	slices.SortFunc(out, func(a, b *domain.BacktestResult) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (s *Store) AddEntry(ctx context.Context, e *domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	e.ID = id.At(now)
	e.CreatedAt = now
	s.journal = append(s.journal, *e)
	return nil
}

func (s *Store) RecentEntries(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.JournalEntry, 0, min(max(limit, 0), len(s.journal)))
	for i := len(s.journal) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.journal[i]
		out = append(out, &e)
	}
	return out, nil
}

func (s *Store) CreateTrade(ctx context.Context, t *domain.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.OpenTime.IsZero() {
		t.OpenTime = s.now().UTC()
	}
	t.ID = id.At(t.OpenTime)
	s.trades = append(s.trades, cloneTrade(*t))
	return nil
}

func (s *Store) FindTrades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Trade, 0, len(s.trades))
	for _, t := range s.trades {
		c := cloneTrade(t)
		all = append(all, &c)
	}
	slices.SortStableFunc(all, func(a, b *domain.Trade) int {
		if c := b.OpenTime.Compare(a.OpenTime); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) CountOpenTrades(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.trades {
		if t.Status == domain.TradeStatusOpen {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetSettings(ctx context.Context) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return domain.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = &settings
	return nil
}

func cloneResult(r domain.BacktestResult) domain.BacktestResult {
	r.EquityCurve = slices.Clone(r.EquityCurve)
	r.Trades = slices.Clone(r.Trades)
	return r
}

func cloneTrade(t domain.Trade) domain.Trade {
	if t.CloseTime != nil {
		ct := *t.CloseTime
		t.CloseTime = &ct
	}
	return t
}
