package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a dedicated registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "sitescope")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithLatencyBuckets([]float64{50, 1, 5, 5}),
				WithMetricsEnabled(true),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.latencyBuckets, ShouldResemble, []float64{1, 5, 50})
				So(manager.constLabels["env"], ShouldEqual, "test")
				So(manager.name("updates_total"), ShouldEqual, "pfx_updates_total")
			})

			Convey("And metrics land in the given registry", func() {
				manager.cellsNormalized.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if strings.HasSuffix(f.GetName(), "pfx_cells_normalized_total") {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording normalization results", func() {
			before := testutil.ToFloat64(globalManager.cellsDropped.WithLabelValues("missing_score"))
			RecordCellDropped("missing_score")
			RecordCellNormalized()

			Convey("Then the counters move", func() {
				after := testutil.ToFloat64(globalManager.cellsDropped.WithLabelValues("missing_score"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateBatchSize(7)
			UpdateBatchVersion(3)
			UpdateQueueSize(2)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.batchSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.batchVersion), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 2)
			})
		})

		Convey("When recording the remaining series", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordMapUpdate("api", "applied")
					RecordMapUpdateLatency(1.5)
					UpdateHighlightedCells(2)
					UpdateQueueCapacity(10)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueRejected("full")
					RecordQueueWaitTime(0.2)
					RecordLoopProcessingLatency(0.3)
					RecordBackendRequest("http", "ok")
					RecordBackendLatency("http", 120)
					RecordChatFallback()
					RecordMockScenario("good", "analyze")
					RecordHTTPRequest("map", "GET", "200")
					RecordHTTPRequestDuration("map", "GET", "200", 3)
					RecordErrorByComponent("loop", "render")
					RecordErrorByType("render", "high")
					RecordErrorByEndpoint("map", "POST", "client_error")
					RecordErrorLatency("http", "client_error", 4)
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.1)
				}, ShouldNotPanic)
			})
		})

		Convey("When the registry is gathered", func() {
			families, err := GetRegistry().Gather()

			Convey("Then it exposes sitescope series", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				So(families[0].GetName(), ShouldStartWith, "sitescope_")
			})
		})
	})
}
