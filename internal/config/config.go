// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - All functions that may perform I/O accept context.Context first.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"time"

	"github.com/okian/itemstore/internal/domain/model"
	"github.com/okian/itemstore/pkg/metrics"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// MaxBodyBytes caps request bodies accepted by the item endpoints.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// DocsEnabled serves /openapi.yaml and /api-docs when true.
	DocsEnabled bool `koanf:"docs_enabled"`

	// SeedItems are loaded into the registry at startup, in order.
	SeedItems []SeedItem `koanf:"seed_items"`

	// Metrics naming and sampling. Empty values keep the metrics defaults.
	MetricsNamespace       string            `koanf:"metrics_namespace"`
	MetricsSubsystem       string            `koanf:"metrics_subsystem"`
	MetricsPrefix          string            `koanf:"metrics_prefix"`
	MetricsLabels          map[string]string `koanf:"metrics_labels"`
	MetricsBuckets         []float64         `koanf:"metrics_buckets"`
	MetricsRefreshInterval time.Duration     `koanf:"metrics_refresh_interval"`
}

// SeedItem is the file representation of an item preloaded at startup.
type SeedItem struct {
	ID          int     `koanf:"id"`
	Name        string  `koanf:"name"`
	Price       float64 `koanf:"price"`
	Description *string `koanf:"description"`
}

// Item converts the seed entry into a domain item.
func (s SeedItem) Item() model.Item {
	return model.Item{ID: s.ID, Name: s.Name, Price: s.Price, Description: s.Description}.Clone()
}

// Items converts the configured seed entries into domain items.
func (c *Config) Items() []model.Item {
	out := make([]model.Item, len(c.SeedItems))
	for i, s := range c.SeedItems {
		out[i] = s.Item()
	}
	return out
}

// MetricsOptions translates the metrics_* keys into metrics options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithMetricPrefix(c.MetricsPrefix),
		metrics.WithCustomLabels(c.MetricsLabels),
		metrics.WithHistogramBuckets(c.MetricsBuckets),
		metrics.WithRefreshInterval(c.MetricsRefreshInterval),
	}
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":8000",
		MaxBodyBytes: 1 << 20,
		DocsEnabled:  true,
		SeedItems: []SeedItem{
			{ID: 1, Name: "Laptop", Price: 3000, Description: model.StringPtr("Gaming laptop")},
			{ID: 2, Name: "Phone", Price: 2000, Description: model.StringPtr("Smartphone")},
		},
		MetricsRefreshInterval: 10 * time.Second,
	}
}
