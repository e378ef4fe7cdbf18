package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func gatheredNames(reg *prometheus.Registry) map[string]bool {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the default refresh interval", func() {
				So(manager, ShouldNotBeNil)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.registryItems.Set(3)
			manager.registryOperations.WithLabelValues("create", "ok").Inc()

			Convey("Then metric names should carry namespace, subsystem and prefix", func() {
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				names := gatheredNames(registry)
				So(names["test_namespace_test_subsystem_test_items"], ShouldBeTrue)
				So(names["test_namespace_test_subsystem_test_operations_total"], ShouldBeTrue)
			})

			Convey("And custom labels should be attached", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if !strings.HasSuffix(f.GetName(), "_items") {
						continue
					}
					for _, lp := range f.GetMetric()[0].GetLabel() {
						if lp.GetName() == "env" && lp.GetValue() == "test" {
							found = true
						}
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When ignoring empty option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithRefreshInterval(0),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "itemstore")
				So(manager.subsystem, ShouldEqual, "registry")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording registry metrics", func() {
			So(func() {
				RecordRegistryOperation("create", "ok")
				RecordRegistryOperation("create", "conflict")
				RecordRegistryOperation("delete", "not_found")
				UpdateRegistryItems(2)
				RecordSearchResults(1)
				RecordRepositoryUpdateLatency(0.2)
				RecordRepositoryQueryLatency(0.1)
			}, ShouldNotPanic)

			Convey("Then they should be exposed on the custom registry", func() {
				names := gatheredNames(GetRegistry())
				So(names["itemstore_registry_operations_total"], ShouldBeTrue)
				So(names["itemstore_registry_items"], ShouldBeTrue)
				So(names["itemstore_registry_search_results"], ShouldBeTrue)
			})
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				IncHTTPInFlight()
				RecordHTTPRequest("items", "GET", "200")
				RecordHTTPRequestDuration("items", "GET", "200", 1.5)
				DecHTTPInFlight()
			}, ShouldNotPanic)

			Convey("Then they should be exposed", func() {
				names := gatheredNames(GetRegistry())
				So(names["itemstore_registry_http_requests_total"], ShouldBeTrue)
				So(names["itemstore_registry_http_request_duration_milliseconds"], ShouldBeTrue)
			})
		})

		Convey("When recording error metrics", func() {
			So(func() {
				RecordErrorByComponent("repository", "not_found")
				RecordErrorByType("not_found", "medium")
				RecordErrorByEndpoint("item", "GET", "not_found")
				RecordErrorLatency("http", "not_found", 0.5)
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024 * 100)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then Default should return the global manager", func() {
			So(Default(), ShouldEqual, globalManager)
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given configured metrics options", t, func() {
		defer Init()

		m := Init(WithNamespace("shop"), WithRefreshInterval(30*time.Second))

		Convey("Then the global manager and registry should be replaced", func() {
			So(Default(), ShouldEqual, m)
			So(Default().RefreshInterval(), ShouldEqual, 30*time.Second)

			UpdateRegistryItems(3)
			names := gatheredNames(GetRegistry())
			So(names["shop_registry_items"], ShouldBeTrue)
			So(names["itemstore_registry_items"], ShouldBeFalse)
		})
	})
}
