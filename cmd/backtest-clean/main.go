package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bobmcallan/vire-research/internal/artifacts"
	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/config"
)

var (
	dir         = flag.String("dir", "", "Backtest directory to clean (overrides config)")
	configFile  = flag.String("config", "", "Configuration file path")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	showVersion = flag.Bool("version", false, "Print version information")
)

// main rewrites every backtest artifact in place, replacing non-finite
// JSON tokens (NaN, Infinity, -Infinity) with null so downstream parsers
// never choke on them. Safe to run repeatedly.
func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("backtest-clean version %s\n", config.GetFullVersion())
		os.Exit(0)
	}

	target := *dir
	if target == "" {
		cfg, err := config.LoadFromFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		target = cfg.Artifacts.BacktestDir
	}

	// Plain one-line-per-event output; a file writer is of no use in a
	// run-once CLI.
	logger := common.NewLoggerWithOutput(*logLevel, os.Stdout)

	logger.Info().Str("dir", target).Msg("cleaning backtest artifacts")

	count, err := artifacts.CleanDirectory(target, logger)
	if err != nil {
		logger.Error().Str("dir", target).Str("error", err.Error()).Msg("clean failed")
		os.Exit(1)
	}

	fmt.Printf("Processed %d backtest files.\n", count)
}
