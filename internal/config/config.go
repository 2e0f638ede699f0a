// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and SITESCOPE_ env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, mirrors logs into a rotated file.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxBackups int    `koanf:"log_max_backups"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BackendURL is the chat backend endpoint. Empty selects the mock responder.
	BackendURL       string `koanf:"backend_url"`
	BackendTimeoutMS int    `koanf:"backend_timeout_ms"`
	BackendRetries   int    `koanf:"backend_retries"`

	// MockDelayMinMS and MockDelayMaxMS bound the simulated processing delay of
	// the mock responder.
	MockDelayMinMS int `koanf:"mock_delay_min_ms"`
	MockDelayMaxMS int `koanf:"mock_delay_max_ms"`

	// MockSeed seeds the mock generator. Zero picks a time-based seed.
	MockSeed int64 `koanf:"mock_seed"`

	// UpdateQueueSize bounds the number of pending map updates.
	UpdateQueueSize int `koanf:"update_queue_size"`

	// ReplayCacheSize bounds how many applied update ids are remembered for
	// answering retried requests.
	ReplayCacheSize int `koanf:"replay_cache_size"`

	// DefaultLayer is the layer rendered at startup.
	DefaultLayer string `koanf:"default_layer"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// AuxPrecision overrides the decimal precision of auxiliary cell fields.
	AuxPrecision map[string]int `koanf:"aux_precision"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogMaxSizeMB:       50,
		LogMaxBackups:      5,
		Addr:               ":9080",
		BackendTimeoutMS:   30_000,
		BackendRetries:     1,
		MockDelayMinMS:     800,
		MockDelayMaxMS:     2000,
		UpdateQueueSize:    64,
		ReplayCacheSize:    1024,
		DefaultLayer:       "score",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
}
