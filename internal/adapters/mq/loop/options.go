package loop

import (
	"time"

	"github.com/okian/sitescope/pkg/logger"
)

// Option applies a configuration option to the Loop.
type Option func(*Loop)

// WithName sets the loop name used for logging.
func WithName(name string) Option {
	return func(l *Loop) {
		if name != "" {
			l.name = name
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loop) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithMetricsInterval sets how often runtime and queue gauges are refreshed.
// Zero disables the updater.
func WithMetricsInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d >= 0 {
			l.metricsInterval = d
		}
	}
}
