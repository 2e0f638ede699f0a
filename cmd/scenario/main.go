package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/sitescope/internal/domain/mock"
	"github.com/okian/sitescope/internal/scenariorun"
)

const (
	defaultRounds  = 1
	defaultWorkers = 4
	defaultTimeout = 30 * time.Second
	runTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		scenario = flag.String("scenario", string(mock.ScenarioMixed), "Scenario: good, bad or mixed")
		style    = flag.String("style", string(mock.StyleAnalyze), "Style: analyze or research")
		seed     = flag.Int64("seed", 0, "Generator seed, 0 for time-based")
		rounds   = flag.Int("rounds", defaultRounds, "Number of updates to submit")
		workers  = flag.Int("workers", defaultWorkers, "Number of concurrent submitters")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		output   = flag.String("output", "", "Save the submitted payloads to this file")
		logFile  = flag.String("log", "", "Mirror logs into this file")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		scenariorun.ShowHelp()
		return
	}

	if err := scenariorun.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	sc, err := mock.ParseScenario(*scenario)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	st, err := mock.ParseStyle(*style)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := &scenariorun.Config{
		BaseURL:    *baseURL,
		Scenario:   sc,
		Style:      st,
		Seed:       *seed,
		Rounds:     *rounds,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *output,
		Verbose:    *verbose,
	}
	if _, err := scenariorun.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Scenario run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
