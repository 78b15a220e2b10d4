package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Rigaud3000/StarTrader/config"
	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/strategy/sweep"
)

type sweepOptions struct {
	backtestOptions
	runs int
	seed uint64
	top  int
}

func newSweepCommand() *cobra.Command {
	opts := &sweepOptions{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Repeat a backtest under many seeds and summarize the spread",
		Long: `Sweep runs the same backtest request once per seed on a worker pool and
prints the distribution of outcomes. Sweep results are not stored.

Example:
  startrader sweep --symbol EURUSD --start 2024-01-01 --end 2024-02-01 --runs 200`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts)
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
	f.BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	f.IntVarP(&opts.runs, "runs", "n", 100, fmt.Sprintf("number of seeds (1-%d)", sweep.MaxRuns))
	f.Uint64Var(&opts.seed, "seed", 0, "seed of the first run (0 uses RANDOM_SEED, then the clock)")
	f.IntVar(&opts.top, "top", 5, "best runs to list")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func runSweep(cmd *cobra.Command, opts *sweepOptions) error {
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

	seed := opts.seed
	if seed == 0 {
		seed = cfg.RandomSeed
	}
	report, err := a.service.SweepBacktest(ctx, domain.BacktestRequest{
		StrategyID:     strategyID,
		Symbol:         opts.symbol,
		Timeframe:      opts.timeframe,
		StartDate:      start,
		EndDate:        end,
		InitialBalance: opts.balance,
	}, opts.runs, seed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printSweep(out, report, opts.top)
}

func printSweep(w io.Writer, r *sweep.Report, top int) error {
	s := r.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Symbol\t%s\n", r.Symbol)
	fmt.Fprintf(tw, "Runs\t%d (%d profitable)\n", s.Runs, s.ProfitableRuns)
	fmt.Fprintf(tw, "Final balance\tmean %.2f, std %.2f, range %.2f .. %.2f\n", s.MeanFinalBalance, s.StdFinalBalance, s.MinFinalBalance, s.MaxFinalBalance)
	fmt.Fprintf(tw, "Mean win rate\t%.2f%%\n", s.MeanWinRate)
	fmt.Fprintf(tw, "Mean max drawdown\t%.2f%%\n", s.MeanMaxDrawdown)
	fmt.Fprintf(tw, "Mean Sharpe ratio\t%.2f\n", s.MeanSharpeRatio)
	fmt.Fprintf(tw, "Mean profit factor\t%.2f\n", s.MeanProfitFactor)
	fmt.Fprintf(tw, "Mean return\t%.2f%%\n", s.MeanROI)
	fmt.Fprintf(tw, "Mean expectancy\t%.2f per trade\n", s.MeanExpectancy)
	fmt.Fprintf(tw, "Longest losing streak\t%d\n", s.LongestLosingStreak)
	fmt.Fprintf(tw, "Best seed\t%d\n", s.BestSeed)
	fmt.Fprintf(tw, "Worst seed\t%d\n", s.WorstSeed)
	if err := tw.Flush(); err != nil {
		return err
	}

	if top <= 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEED\tSCORE\tTRADES\tWIN RATE\tRETURN\tFINAL BALANCE")
	for _, run := range r.Runs[:min(top, len(r.Runs))] {
		res := run.Result
		fmt.Fprintf(tw, "%d\t%.2f\t%d\t%.2f%%\t%.2f%%\t%.2f\n", run.Seed, run.Score, res.TotalTrades, res.WinRate, res.Stats.ReturnOnInvestment, res.FinalBalance)
	}
	return tw.Flush()
}
