package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantrow/signalrun/internal/backtest"
	"github.com/quantrow/signalrun/internal/risk"
)

// minMarketWindow is the shortest trailing history a period scores on.
const minMarketWindow = 5

func newBacktestCmd(configPath *string) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay a CSV history through the risk-sized simulator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			h, err := loadHistory(csvPath)
			if err != nil {
				return err
			}
			if len(h.prices) <= minMarketWindow {
				return fmt.Errorf("need more than %d rows, got %d", minMarketWindow, len(h.prices))
			}

			scorer, err := risk.NewAggregator(cfg.Signal.Risk)
			if err != nil {
				return err
			}
			sim := backtest.NewSimulator(scorer, risk.NewSizer(cfg.Signal.Combiner.RiskPerTrade))

			// Each period trades the close against the next close,
			// scored on the trailing market window.
			var periods []backtest.Period
			for i := minMarketWindow; i < len(h.prices)-1; i++ {
				periods = append(periods, backtest.Period{
					Date:      h.dates[i],
					Price:     h.prices[i],
					NextPrice: h.prices[i+1],
					Market: risk.MarketData{
						Prices:  h.prices[:i+1],
						Volumes: h.volumes[:i+1],
					},
					Sentiment: risk.NeutralSentiment(),
				})
			}

			result, err := sim.Run(periods, cfg.Backtest)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with date,price,volume rows")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
