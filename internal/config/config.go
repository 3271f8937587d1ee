// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and KICKOFF_ env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import "runtime"

// Photo store backends.
const (
	PhotoBackendMemory = "memory"
	PhotoBackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CORSOrigins is a comma separated allow-list for browser clients.
	CORSOrigins string `koanf:"cors_origins"`

	// JobQueueSize bounds the simulation job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of simulation workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxInFlight caps pending simulations and advice requests across all
	// sessions. Zero is unbounded.
	MaxInFlight int `koanf:"max_in_flight"`

	// Sequencer cadence.
	StepIntervalMS   int `koanf:"step_interval_ms"`
	GoalPauseMS      int `koanf:"goal_pause_ms"`
	JitterIntervalMS int `koanf:"jitter_interval_ms"`

	// Seed feeds the squad/market generator. Zero seeds from the clock.
	Seed int64 `koanf:"seed"`

	// Content generator. An empty API key runs offline on procedural events.
	ContentAPIKey    string `koanf:"content_api_key"`
	ContentModel     string `koanf:"content_model"`
	ContentBaseURL   string `koanf:"content_base_url"`
	ContentTimeoutMS int    `koanf:"content_timeout_ms"`

	// Photo cache.
	PhotoBackend   string `koanf:"photo_backend"`
	PhotoKeyPrefix string `koanf:"photo_key_prefix"`
	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		CORSOrigins:      "*",
		JobQueueSize:     1_024,
		WorkerCount:      runtime.NumCPU(),
		MaxInFlight:      4_096,
		StepIntervalMS:   1200,
		GoalPauseMS:      2000,
		JitterIntervalMS: 500,
		ContentModel:     "gemini-2.5-flash",
		ContentBaseURL:   "https://generativelanguage.googleapis.com",
		ContentTimeoutMS: 20_000,
		PhotoBackend:     PhotoBackendMemory,
		PhotoKeyPrefix:   "player_photo_",
		RedisAddr:        "localhost:6379",
	}
}
