package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolatedEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("RANDOM_SEED", "3")
	t.Setenv("BARS_EXPORT_PATH", filepath.Join(dir, "latest_bars.csv"))
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "startrader version dev\n", out)
}

func TestBarsCommand(t *testing.T) {
	dir := isolatedEnv(t)
	path := filepath.Join(dir, "bars.csv")

	out, err := run(t, "bars", "--symbol", "USDJPY", "--start", "2024-01-01", "--end", "2024-01-01T02:00:00Z", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 24 bars")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 25)
	assert.Equal(t, []string{"time", "open", "high", "low", "close", "tick_volume", "spread", "real_volume"}, rows[0])
}

func TestBarsCommand_Errors(t *testing.T) {
	isolatedEnv(t)

	_, err := run(t, "bars", "--start", "2024-01-01")
	assert.Error(t, err)

	_, err = run(t, "bars", "--start", "yesterday", "--end", "2024-01-02")
	assert.ErrorContains(t, err, "invalid date")

	_, err = run(t, "bars", "--start", "2024-01-02", "--end", "2024-01-01")
	assert.Error(t, err)

	t.Setenv("BAR_MAX_COUNT", "10")
	_, err = run(t, "bars", "--start", "2024-01-01", "--end", "2024-01-02")
	assert.ErrorContains(t, err, "endDate")
}

func TestBacktestCommand_JSON(t *testing.T) {
	dir := isolatedEnv(t)

	out, err := run(t, "backtest", "--start", "2024-01-01", "--end", "2024-02-01", "--json")
	require.NoError(t, err)

	var result domain.BacktestResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "SMA Crossover", result.StrategyName)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, result.TotalTrades, result.WinningTrades+result.LosingTrades)
	assert.InDelta(t, result.TotalProfit/result.InitialBalance*100, result.Stats.ReturnOnInvestment, 1e-9)
	assert.Equal(t, result.LosingTrades, result.Stats.MaxConsecutiveLosses)
	assert.FileExists(t, filepath.Join(dir, "latest_bars.csv"))

	again, err := run(t, "backtest", "--start", "2024-01-01", "--end", "2024-02-01", "--json")
	require.NoError(t, err)
	var second domain.BacktestResult
	require.NoError(t, json.Unmarshal([]byte(again), &second))
	assert.Equal(t, result.Trades, second.Trades)
}

func TestBacktestCommand_Summary(t *testing.T) {
	isolatedEnv(t)

	out, err := run(t, "backtest", "--symbol", "GBPUSD", "--start", "2024-01-01", "--end", "2024-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Strategy       SMA Crossover")
	assert.Contains(t, out, "GBPUSD H1")
	assert.Contains(t, out, "Win rate")
	assert.Contains(t, out, "Expectancy")
	assert.Contains(t, out, "Streaks")
}

func TestBacktestCommand_Validation(t *testing.T) {
	isolatedEnv(t)

	_, err := run(t, "backtest", "--start", "2024-01-01", "--end", "2024-02-01", "--balance", "50")
	assert.ErrorContains(t, err, "initialBalance")

	_, err = run(t, "backtest", "--strategy", "missing", "--start", "2024-01-01", "--end", "2024-02-01")
	assert.ErrorContains(t, err, "strategy not found")
}

func TestSweepCommand(t *testing.T) {
	isolatedEnv(t)

	out, err := run(t, "sweep", "--start", "2024-01-01", "--end", "2024-01-15", "--runs", "8", "--top", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Runs")
	assert.Contains(t, out, "8 (")
	assert.Contains(t, out, "SEED")
	assert.Contains(t, out, "Longest losing streak")
	// header, three runs
	assert.Equal(t, 4, strings.Count(out[strings.Index(out, "SEED"):], "\n"))

	out, err = run(t, "sweep", "--start", "2024-01-01", "--end", "2024-01-15", "--runs", "4", "--seed", "11", "--json")
	require.NoError(t, err)
	var report struct {
		Summary struct {
			Runs int `json:"runs"`
		} `json:"summary"`
		Runs []struct {
			Seed uint64 `json:"seed"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Summary.Runs)
	seeds := []uint64{}
	for _, r := range report.Runs {
		seeds = append(seeds, r.Seed)
	}
	assert.ElementsMatch(t, []uint64{11, 12, 13, 14}, seeds)

	_, err = run(t, "sweep", "--start", "2024-01-01", "--end", "2024-01-15", "--runs", "0")
	assert.ErrorContains(t, err, "runs")
}
