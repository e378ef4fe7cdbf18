package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/itemstore/internal/config"
	"github.com/okian/itemstore/pkg/metrics"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 1<<20)
				convey.So(len(cfg.SeedItems), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ITEMSTORE_ADDR", ":8080")
			_ = os.Setenv("ITEMSTORE_LOG_LEVEL", "debug")
			_ = os.Setenv("ITEMSTORE_LOG_FORMAT", "json")
			_ = os.Setenv("ITEMSTORE_MAX_BODY_BYTES", "4096")
			_ = os.Setenv("ITEMSTORE_DOCS_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 4096)
				convey.So(cfg.DocsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
max_body_bytes: 2048
seed_items:
  - id: 10
    name: "Desk"
    price: 250.5
  - id: 11
    name: "Chair"
    price: 99
    description: "Office chair"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ITEMSTORE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 2048)
			})

			convey.Convey("And the file seed should replace the default seed", func() {
				items := cfg.Items()
				convey.So(len(items), convey.ShouldEqual, 2)
				convey.So(items[0].ID, convey.ShouldEqual, 10)
				convey.So(items[0].Name, convey.ShouldEqual, "Desk")
				convey.So(items[0].Price, convey.ShouldEqual, 250.5)
				convey.So(items[0].Description, convey.ShouldBeNil)
				convey.So(items[1].Name, convey.ShouldEqual, "Chair")
				convey.So(*items[1].Description, convey.ShouldEqual, "Office chair")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
log_level: "warn"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ITEMSTORE_CONFIG", tmpFile)
			_ = os.Setenv("ITEMSTORE_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")    // Overridden by env
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn") // From file
				convey.So(len(cfg.SeedItems), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading metrics settings from file and env", func() {
			yamlContent := `
metrics_subsystem: "catalog"
metrics_prefix: "api_"
metrics_refresh_interval: "30s"
metrics_buckets: [5, 1, 25]
metrics_labels:
  env: "staging"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ITEMSTORE_CONFIG", tmpFile)
			_ = os.Setenv("ITEMSTORE_METRICS_NAMESPACE", "shop")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then every metrics key should be populated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "shop")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "catalog")
				convey.So(cfg.MetricsPrefix, convey.ShouldEqual, "api_")
				convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{5, 1, 25})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "staging"})
			})

			convey.Convey("And the options should name the metrics accordingly", func() {
				reg := prometheus.NewRegistry()
				m := metrics.NewManager(append(cfg.MetricsOptions(), metrics.WithPrometheusRegistry(reg))...)
				convey.So(m.RefreshInterval(), convey.ShouldEqual, 30*time.Second)

				families, err := reg.Gather()
				convey.So(err, convey.ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				convey.So(names["shop_catalog_api_items"], convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the metrics namespace is not a valid metric name", func() {
			_ = os.Setenv("ITEMSTORE_METRICS_NAMESPACE", "item-store")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ITEMSTORE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ITEMSTORE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ITEMSTORE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the YAML seed has duplicate ids", func() {
			yamlContent := `
seed_items:
  - id: 1
    name: "A"
    price: 1
  - id: 1
    name: "B"
    price: 2
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ITEMSTORE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "duplicate seed item id")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ITEMSTORE_MAX_BODY_BYTES", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ITEMSTORE_CONFIG",
		"ITEMSTORE_ADDR",
		"ITEMSTORE_LOG_LEVEL",
		"ITEMSTORE_LOG_FORMAT",
		"ITEMSTORE_MAX_BODY_BYTES",
		"ITEMSTORE_DOCS_ENABLED",
		"ITEMSTORE_METRICS_NAMESPACE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "itemstore-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
