package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := NewStore()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestStore_Strategies(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	a := &domain.Strategy{Name: "A", Symbol: "EURUSD"}
	b := &domain.Strategy{Name: "B", Symbol: "USDJPY"}
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, "B", all[1].Name)

	// callers cannot mutate stored values
	all[0].Name = "mutated"
	found, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", found.Name)

	found.Name = "A2"
	require.NoError(t, s.Update(ctx, found))
	assert.True(t, found.UpdatedAt.After(found.CreatedAt))
	found, _ = s.FindByID(ctx, a.ID)
	assert.Equal(t, "A2", found.Name)

	require.NoError(t, s.Delete(ctx, a.ID))
	found, err = s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.ErrorIs(t, s.Delete(ctx, a.ID), ports.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, &domain.Strategy{ID: "missing"}), ports.ErrNotFound)
}

func TestStore_Backtests(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	r1 := &domain.BacktestResult{StrategyID: "s1", EquityCurve: []float64{100, 110}}
	r2 := &domain.BacktestResult{StrategyID: "s2"}
	r3 := &domain.BacktestResult{StrategyID: "s1"}
	for _, r := range []*domain.BacktestResult{r1, r2, r3} {
		require.NoError(t, s.CreateBacktest(ctx, r))
		assert.NotEmpty(t, r.ID)
		assert.False(t, r.CreatedAt.IsZero())
	}

	all, err := s.FindBacktests(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{r3.ID, r2.ID, r1.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := s.FindBacktestsByStrategy(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, r3.ID, mine[0].ID)

	// stored copy is independent of the caller's slice
	r1.EquityCurve[1] = 0
	got, err := s.FindBacktestByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 110}, got.EquityCurve)

	none, err := s.FindBacktestByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStore_JournalAndTrades(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, s.AddEntry(ctx, &domain.JournalEntry{Type: domain.JournalInfo, Message: msg}))
	}
	entries, err := s.RecentEntries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "three", entries[0].Message)
	assert.Equal(t, "two", entries[1].Message)

	empty, err := s.RecentEntries(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.CreateTrade(ctx, &domain.Trade{Symbol: "EURUSD", Status: domain.TradeStatusOpen}))
	require.NoError(t, s.CreateTrade(ctx, &domain.Trade{Symbol: "USDJPY", Status: domain.TradeStatusClosed}))
	require.NoError(t, s.CreateTrade(ctx, &domain.Trade{Symbol: "GBPUSD", Status: domain.TradeStatusOpen}))

	n, err := s.CountOpenTrades(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	trades, err := s.FindTrades(ctx, 2)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "GBPUSD", trades[0].Symbol)
	assert.Equal(t, "USDJPY", trades[1].Symbol)
}

func TestStore_Settings(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	custom := got
	custom.MaxOpenTrades = 9
	require.NoError(t, s.SaveSettings(ctx, custom))
	got, err = s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, got.MaxOpenTrades)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.CreateBacktest(ctx, &domain.BacktestResult{StrategyID: "s1"})
			_ = s.AddEntry(ctx, &domain.JournalEntry{Type: domain.JournalBacktest, Message: "run"})
		}()
	}
	wg.Wait()

	all, err := s.FindBacktests(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
	entries, err := s.RecentEntries(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}
