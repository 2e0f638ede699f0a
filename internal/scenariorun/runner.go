package scenariorun

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/sitescope/internal/domain/mock"
	"github.com/okian/sitescope/pkg/logger"
)

// Run generates cfg.Rounds updates, submits them concurrently, then checks
// that the server displays the last applied one.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	applyDefaults(cfg)
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("scenariorun")

	log.Info(ctx, "starting scenario run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("scenario", string(cfg.Scenario)),
		logger.String("style", string(cfg.Style)),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := checkServiceHealth(ctx, c); err != nil {
		return stats, err
	}

	payloads := generatePayloads(cfg)
	subs := submitUpdates(ctx, cfg, c, payloads, stats)
	if cfg.Verbose {
		for _, s := range subs {
			if s.err != nil {
				log.Warn(ctx, "update not applied", logger.Error(s.err))
			}
		}
	}

	var snap Snapshot
	if err := c.get(ctx, "/api/map", &snap); err != nil {
		return stats, fmt.Errorf("fetch map: %w", err)
	}
	stats.Cells = snap.Total

	if err := verify(cfg, subs, snap); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := savePayloads(cfg.OutputFile, payloads); err != nil {
			log.Warn(ctx, "failed to save payloads", logger.Error(err))
		} else {
			log.Info(ctx, "payloads saved", logger.String("file", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats, snap)
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = defaultRounds
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Scenario == "" {
		cfg.Scenario = mock.ScenarioMixed
	}
	if cfg.Style == "" {
		cfg.Style = mock.StyleAnalyze
	}
}

// generatePayloads draws cfg.Rounds answers from a local generator.
func generatePayloads(cfg *Config) []Payload {
	var opts []mock.Option
	if cfg.Seed != 0 {
		opts = append(opts, mock.WithSeed(cfg.Seed))
	}
	gen := mock.NewGenerator(opts...)

	out := make([]Payload, cfg.Rounds)
	for i := range out {
		res := gen.Run(cfg.Scenario, cfg.Style)
		out[i] = Payload{HexagonData: res.Raw, Highlighted: res.Highlighted}
	}
	return out
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *client) error {
	if err := c.get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// savePayloads writes the submitted payloads as a JSON array.
func savePayloads(filename string, payloads []Payload) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(payloads, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payloads: %w", err)
	}
	return os.WriteFile(filename, data, 0o600)
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats, snap Snapshot) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	logger.Named("scenariorun").Info(ctx, "final statistics",
		logger.Int("submitted", stats.Submitted),
		logger.Int("applied", stats.Applied),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("cells", stats.Cells),
		logger.Any("version", snap.Version),
		logger.String("layer", snap.Layer),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("updatesPerSecond", perSecond),
	)
}
