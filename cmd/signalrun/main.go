// signalrun is the command-line entry point: score a symbol offline,
// replay a backtest, or serve the REST API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quantrow/signalrun/internal/config"
)

const (
	appName = "signalrun"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(writer)
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Signal scoring and risk management engine",
		Version: version,
		Long: `signalrun fuses model forecasts, technical indicators and
multi-factor risk scores into actionable trade signals.

Subcommands:
  score     score a symbol from a CSV price/volume history
  backtest  replay a CSV history through the risk-sized simulator
  serve     run the REST API`,
		SilenceUsage: true,
	}

	var configPath string
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults apply when empty)")
	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	cobra.OnInitialize(func() {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	})

	rootCmd.AddCommand(newScoreCmd(&configPath))
	rootCmd.AddCommand(newBacktestCmd(&configPath))
	rootCmd.AddCommand(newServeCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig returns defaults when no path was given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		c := config.Default()
		return &c, nil
	}
	return config.Load(path)
}
