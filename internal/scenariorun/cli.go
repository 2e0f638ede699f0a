package scenariorun

import (
	"os"
	"time"

	"github.com/okian/sitescope/pkg/logger"
)

// SetupLogging initializes the logger, mirroring output into logFile when
// it is set.
func SetupLogging(logFile string, verbose bool) error {
	var opts []logger.Option
	if logFile != "" {
		opts = append(opts, logger.WithFile(logFile, 0, 0))
	}
	if err := logger.Init(opts...); err != nil {
		return err
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// DefaultOutputFile returns a timestamped payload file name.
func DefaultOutputFile(now time.Time) string {
	return "scenario_payloads_" + now.Format("20060102_150405") + ".json"
}

// ShowHelp prints usage information.
func ShowHelp() {
	os.Stdout.WriteString(`Sitescope Scenario Runner
=========================

Submits generated map updates to a running server and checks the map it
ends up displaying.

Usage:
  go run ./cmd/scenario [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -scenario string   good, bad or mixed (default "mixed")
  -style string      analyze or research (default "analyze")
  -seed int          Generator seed, 0 for time-based
  -rounds int        Number of updates to submit (default 1)
  -workers int       Number of concurrent submitters (default 4)
  -timeout duration  HTTP request timeout (default 30s)
  -output string     Save the submitted payloads to this file
  -log string        Mirror logs into this file
  -verbose           Enable verbose logging
  -help              Show this help message

Examples:
  go run ./cmd/scenario -scenario good
  go run ./cmd/scenario -scenario bad -style research -rounds 50 -workers 8
`)
}
