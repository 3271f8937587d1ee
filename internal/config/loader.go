package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KICKOFF_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KICKOFF_CONFIG is set
//  3. env (prefix KICKOFF_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// KICKOFF_STEP_INTERVAL_MS -> step_interval_ms; underscores are kept
	// so keys match the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxInFlight < 0:
		return fmt.Errorf("%w: max_in_flight must not be negative", ErrInvalidConfig)
	case c.StepIntervalMS <= 0:
		return fmt.Errorf("%w: step_interval_ms must be positive", ErrInvalidConfig)
	case c.GoalPauseMS < 0:
		return fmt.Errorf("%w: goal_pause_ms must not be negative", ErrInvalidConfig)
	case c.JitterIntervalMS <= 0:
		return fmt.Errorf("%w: jitter_interval_ms must be positive", ErrInvalidConfig)
	case c.ContentTimeoutMS <= 0:
		return fmt.Errorf("%w: content_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch c.PhotoBackend {
	case PhotoBackendMemory, PhotoBackendRedis:
	default:
		return fmt.Errorf("%w: unknown photo_backend %q", ErrInvalidConfig, c.PhotoBackend)
	}
	return nil
}

// AllowedOrigins splits CORSOrigins into a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
