package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "ITEMSTORE_"
	EnvConfigPath = EnvPrefix + "CONFIG"
)

// metricName matches the characters Prometheus allows in a metric name.
var metricName = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if ITEMSTORE_CONFIG is set
//  3. env (prefix ITEMSTORE_)
//
// seed_items can only be set from the file; env vars carry scalars.
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like ITEMSTORE_MAX_BODY_BYTES -> max_body_bytes (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a config key.
	k.Delete("config")

	cfg := *base
	if k.Exists("seed_items") {
		// Replace the default seed rather than merging into it element-wise.
		cfg.SeedItems = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the service relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.MetricsRefreshInterval < 0 {
		return fmt.Errorf("%w: metrics_refresh_interval must not be negative", ErrInvalidConfig)
	}
	for _, name := range []string{c.MetricsNamespace, c.MetricsSubsystem, c.MetricsPrefix} {
		if name != "" && !metricName.MatchString(name) {
			return fmt.Errorf("%w: invalid metrics name part %q", ErrInvalidConfig, name)
		}
	}
	for _, b := range c.MetricsBuckets {
		if b <= 0 {
			return fmt.Errorf("%w: metrics_buckets must be positive", ErrInvalidConfig)
		}
	}
	seen := make(map[int]struct{}, len(c.SeedItems))
	for _, it := range c.SeedItems {
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: duplicate seed item id %d", ErrInvalidConfig, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}
