package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When a manager is built with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered under the namespace", func() {
				m.uploadsReceived.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_uploads_received_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options carry empty values", func() {
			m := NewManager(WithNamespace(""), WithHistogramBuckets(nil), WithConstLabels(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "plantmetrics")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Upload counters accumulate", func() {
			before := testutil.ToFloat64(globalManager.uploadsReceived)
			RecordUploadReceived(2048)
			RecordUploadReceived(10)
			So(testutil.ToFloat64(globalManager.uploadsReceived), ShouldEqual, before+2)

			beforeFailed := testutil.ToFloat64(globalManager.uploadsFailed.WithLabelValues("corrupt"))
			RecordUploadFailed("corrupt")
			So(testutil.ToFloat64(globalManager.uploadsFailed.WithLabelValues("corrupt")), ShouldEqual, beforeFailed+1)
		})

		Convey("Row counters add both totals", func() {
			p, s := testutil.ToFloat64(globalManager.rowsParsed), testutil.ToFloat64(globalManager.rowsSkipped)
			RecordRows(10, 2)
			So(testutil.ToFloat64(globalManager.rowsParsed), ShouldEqual, p+10)
			So(testutil.ToFloat64(globalManager.rowsSkipped), ShouldEqual, s+2)
		})

		Convey("A dataset swap sets the gauges", func() {
			RecordDatasetSwap(120, 30, 4, 1700000000)
			So(testutil.ToFloat64(globalManager.datasetRecords), ShouldEqual, 120)
			So(testutil.ToFloat64(globalManager.datasetDates), ShouldEqual, 30)
			So(testutil.ToFloat64(globalManager.datasetPlants), ShouldEqual, 4)
			So(testutil.ToFloat64(globalManager.datasetLastSwapUnix), ShouldEqual, 1700000000)
		})

		Convey("Gauges accept edge values", func() {
			So(func() {
				UpdateQueueSize(0)
				UpdateQueueSize(-1)
				UpdateQueueUtilization(1.5)
				UpdateWorkerCount(0)
				UpdateJobsRetained(1 << 20)
				RecordHTTPRequest("", "", "200")
				RecordErrorByComponent("", "")
				RecordErrorByEndpoint("/uploads", "POST", "too_large")
				RecordIngestDuration("csv", 0)
				RecordSystemGCPauseTime(0.01)
			}, ShouldNotPanic)
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Metrics can be recorded from many goroutines", t, func() {
		before := testutil.ToFloat64(globalManager.queueEnqueued)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordQueueEnqueue()
					UpdateQueueSize(j)
					RecordHTTPRequest("/dates", "GET", "200")
				}
			}()
		}
		wg.Wait()
		So(testutil.ToFloat64(globalManager.queueEnqueued), ShouldEqual, before+1000)
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("The global registry gathers without error", t, func() {
		_, err := GetRegistry().Gather()
		So(err, ShouldBeNil)
	})
}
