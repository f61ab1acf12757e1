package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantrow/signalrun/internal/providers"
	"github.com/quantrow/signalrun/internal/signal"
)

// history is one parsed CSV row set: aligned dates, prices and volumes.
type history struct {
	dates   []time.Time
	prices  []float64
	volumes []float64
}

// loadHistory parses a date,price,volume CSV. A header row is skipped
// when the first field does not parse as a date.
func loadHistory(path string) (*history, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	h := &history{}
	for i, rec := range records {
		if len(rec) < 3 {
			return nil, fmt.Errorf("%s line %d: want date,price,volume", path, i+1)
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("%s line %d: bad date %q", path, i+1, rec[0])
		}
		price, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad price %q", path, i+1, rec[1])
		}
		volume, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad volume %q", path, i+1, rec[2])
		}
		h.dates = append(h.dates, date)
		h.prices = append(h.prices, price)
		h.volumes = append(h.volumes, volume)
	}
	if len(h.prices) == 0 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	return h, nil
}

func newScoreCmd(configPath *string) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "score SYMBOL",
		Short: "Score a symbol from a CSV history",
		Long:  "Runs the full pipeline offline with a drift-extrapolating predictor and prints the signal as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			h, err := loadHistory(csvPath)
			if err != nil {
				return err
			}

			gen, err := signal.NewGenerator(cfg.Signal, signal.Deps{
				Predictor: providers.OfflinePredictor{},
			})
			if err != nil {
				return err
			}

			sig, err := gen.Generate(cmd.Context(), args[0], h.prices, h.volumes)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sig)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with date,price,volume rows")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
