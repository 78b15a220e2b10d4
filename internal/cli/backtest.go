package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Rigaud3000/StarTrader/config"
	"github.com/Rigaud3000/StarTrader/internal/domain"
)

type backtestOptions struct {
	strategyID   string
	strategyName string
	symbol       string
	timeframe    string
	start        string
	end          string
	balance      float64
	asJSON       bool
}

func newBacktestCommand() *cobra.Command {
	opts := &backtestOptions{}
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run one simulated backtest and print the summary",
		Long: `Backtest synthesizes bars for the range, simulates a trade ledger and
stores the result in the configured store. Bars are exported to BARS_EXPORT_PATH.

Without --strategy a strategy named --name is created for the run.

Example:
  startrader backtest --symbol EURUSD --start 2024-01-01 --end 2024-02-01 --balance 10000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.strategyID, "strategy", "", "id of a stored strategy")
	f.StringVar(&opts.strategyName, "name", "SMA Crossover", "strategy name used when --strategy is empty")
	f.StringVarP(&opts.symbol, "symbol", "s", "EURUSD", "instrument symbol")
	f.StringVarP(&opts.timeframe, "timeframe", "t", "H1", "timeframe label")
	f.StringVar(&opts.start, "start", "", "start date, YYYY-MM-DD or RFC3339 (required)")
	f.StringVar(&opts.end, "end", "", "end date, YYYY-MM-DD or RFC3339 (required)")
	f.Float64VarP(&opts.balance, "balance", "b", 10000, "initial balance")
	f.BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func runBacktest(cmd *cobra.Command, opts *backtestOptions) error {
	start, err := domain.ParseDate(opts.start)
	if err != nil {
		return err
	}
	end, err := domain.ParseDate(opts.end)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := buildApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	strategyID := opts.strategyID
	if strategyID == "" {
		st := &domain.Strategy{Name: opts.strategyName, Symbol: opts.symbol, Timeframe: opts.timeframe, Active: true}
		if err := a.service.CreateStrategy(ctx, st); err != nil {
			return err
		}
		strategyID = st.ID
	}

	result, err := a.service.RunBacktest(ctx, domain.BacktestRequest{
		StrategyID:     strategyID,
		Symbol:         opts.symbol,
		Timeframe:      opts.timeframe,
		StartDate:      start,
		EndDate:        end,
		InitialBalance: opts.balance,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printSummary(out, result, cfg.BarsExportPath)
}

func printSummary(w io.Writer, r *domain.BacktestResult, barsPath string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Backtest\t%s\n", r.ID)
	fmt.Fprintf(tw, "Strategy\t%s\n", r.StrategyName)
	fmt.Fprintf(tw, "Symbol\t%s %s\n", r.Symbol, r.Timeframe)
	fmt.Fprintf(tw, "Range\t%s .. %s\n", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))
	fmt.Fprintf(tw, "Trades\t%d (%d won, %d lost)\n", r.TotalTrades, r.WinningTrades, r.LosingTrades)
	fmt.Fprintf(tw, "Win rate\t%.2f%%\n", r.WinRate)
	fmt.Fprintf(tw, "Balance\t%.2f -> %.2f (%+.2f)\n", r.InitialBalance, r.FinalBalance, r.TotalProfit)
	fmt.Fprintf(tw, "Max drawdown\t%.2f%%\n", r.MaxDrawdown)
	fmt.Fprintf(tw, "Sharpe ratio\t%.2f\n", r.SharpeRatio)
	fmt.Fprintf(tw, "Profit factor\t%.2f\n", r.ProfitFactor)
	fmt.Fprintf(tw, "Return\t%.2f%%\n", r.Stats.ReturnOnInvestment)
	fmt.Fprintf(tw, "Expectancy\t%.2f per trade (avg win %.2f, avg loss %.2f)\n", r.Stats.Expectancy, r.Stats.AverageWin, r.Stats.AverageLoss)
	fmt.Fprintf(tw, "Largest trade\twin %.2f, loss %.2f\n", r.Stats.LargestWin, r.Stats.LargestLoss)
	fmt.Fprintf(tw, "Streaks\t%d wins, %d losses\n", r.Stats.MaxConsecutiveWins, r.Stats.MaxConsecutiveLosses)
	fmt.Fprintf(tw, "Bars exported\t%s\n", barsPath)
	return tw.Flush()
}
