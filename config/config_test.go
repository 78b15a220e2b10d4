package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/adapters/logger"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5*time.Minute, cfg.BarInterval)
	assert.Equal(t, 1_000_000, cfg.BarMaxCount)
	assert.Equal(t, "storage/backtests/latest_bars.csv", cfg.BarsExportPath)
	assert.Equal(t, "csv", cfg.BarsExportFormat)
	assert.Zero(t, cfg.RandomSeed)
	assert.False(t, cfg.LegacyMetrics)
	assert.Equal(t, "python3", cfg.MLPython)
	assert.Equal(t, 10*time.Second, cfg.MLTimeout)
	assert.Equal(t, 0.55, cfg.MLConfidenceThreshold)
	assert.Equal(t, 100, cfg.MLMaxBars)
	assert.Equal(t, 10, cfg.StrategyShortMAPeriod)
	assert.Equal(t, 30, cfg.StrategyLongMAPeriod)
	assert.Equal(t, 10000.0, cfg.MT5InitialBalance)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("BAR_INTERVAL_SECONDS", "60")
	t.Setenv("BAR_MAX_COUNT", "5000")
	t.Setenv("BARS_EXPORT_FORMAT", "parquet")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("LEGACY_METRICS", "true")
	t.Setenv("ML_CONFIDENCE_THRESHOLD", "0.7")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, time.Minute, cfg.BarInterval)
	assert.Equal(t, 5000, cfg.BarMaxCount)
	assert.Equal(t, "parquet", cfg.BarsExportFormat)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.True(t, cfg.LegacyMetrics)
	assert.Equal(t, 0.7, cfg.MLConfidenceThreshold)
}

func TestFromEnv_CollectsErrors(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("BAR_INTERVAL_SECONDS", "abc")
	t.Setenv("BAR_MAX_COUNT", "0")
	t.Setenv("RANDOM_SEED", "-1")
	t.Setenv("ML_CONFIDENCE_THRESHOLD", "1.5")
	t.Setenv("STRATEGY_SHORT_MA_PERIOD", "40")

	_, err := FromEnv()
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
	for _, want := range []string{"STORE_DRIVER", "BAR_INTERVAL_SECONDS", "BAR_MAX_COUNT", "RANDOM_SEED", "ML_CONFIDENCE_THRESHOLD", "STRATEGY_SHORT_MA_PERIOD"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseStrategySeeds(t *testing.T) {
	data := []byte(`
strategies:
  - name: SMA Crossover
    description: Fast/slow SMA with RSI filter
    symbol: EURUSD
    timeframe: H1
    active: true
  - name: JPY Breakout
    symbol: USDJPY
    timeframe: M15
    code: |
      if close > high_20: buy
`)
	seeds, err := ParseStrategySeeds(data)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, "SMA Crossover", seeds[0].Name)
	assert.True(t, seeds[0].Active)
	assert.Equal(t, "USDJPY", seeds[1].Symbol)
	assert.Equal(t, "if close > high_20: buy\n", seeds[1].Code)
	assert.False(t, seeds[1].Active)
}

func TestParseStrategySeeds_Invalid(t *testing.T) {
	_, err := ParseStrategySeeds([]byte("strategies:\n  - symbol: EURUSD\n"))
	assert.ErrorContains(t, err, "name is required")

	_, err = ParseStrategySeeds([]byte("strategies: [unclosed"))
	assert.Error(t, err)
}

func TestLoadStrategySeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategies:\n  - name: A\n"), 0o644))

	seeds, err := LoadStrategySeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds, 1)

	_, err = LoadStrategySeeds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
