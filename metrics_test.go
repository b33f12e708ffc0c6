package qsim

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given metrics attached to a register", t, func() {
		reg := prometheus.NewRegistry()
		metrics := NewMetrics(reg)

		r, err := NewRegister(2, WithSeed(1), WithMetrics(metrics))
		So(err, ShouldBeNil)

		Convey("Gates and measurements should be counted", func() {
			So(r.ApplyGate(H, 0), ShouldBeNil)
			So(r.ApplyGate(CNOT, 0, 1), ShouldBeNil)
			So(r.ApplyGate(H, 1), ShouldBeNil)
			r.Measure()

			So(testutil.ToFloat64(metrics.gates.WithLabelValues("H")), ShouldEqual, 2.0)
			So(testutil.ToFloat64(metrics.gates.WithLabelValues("CX")), ShouldEqual, 1.0)
			So(testutil.ToFloat64(metrics.measurements), ShouldEqual, 1.0)

			exported := metrics.ExportMetrics()
			So(exported["gates_applied"], ShouldEqual, int64(3))
			So(exported["measurements"], ShouldEqual, int64(1))
		})

		Convey("Failed applications should not be counted", func() {
			So(r.ApplyGate(H, 9), ShouldNotBeNil)
			So(testutil.ToFloat64(metrics.gates.WithLabelValues("H")), ShouldEqual, 0.0)
		})

		Convey("Algorithm runs should be labeled by outcome", func() {
			_, err := GroverSearch([]int{1, 2, 3, 4}, 3, WithSeed(2), WithMetrics(metrics))
			So(err, ShouldBeNil)
			So(testutil.ToFloat64(metrics.runs.WithLabelValues("grover", "hit")), ShouldEqual, 1.0)
		})

		Convey("Registering twice should reuse the collectors", func() {
			again := NewMetrics(reg)
			So(again.gates, ShouldEqual, metrics.gates)
		})
	})

	Convey("Given job executions", t, func() {
		metrics := NewMetrics(nil)

		metrics.recordJobExecution(time.Now().Add(-10*time.Millisecond), true)
		metrics.recordJobExecution(time.Now().Add(-20*time.Millisecond), false)

		Convey("Success rate and latency should be tracked", func() {
			exported := metrics.ExportMetrics()
			So(exported["job_count"], ShouldEqual, int64(2))
			So(exported["success_rate"], ShouldEqual, 0.5)
			So(metrics.P99JobLatency, ShouldBeGreaterThanOrEqualTo, 10*time.Millisecond)
		})
	})

	Convey("Given a nil *Metrics", t, func() {
		var metrics *Metrics

		Convey("It should record nothing and not panic", func() {
			So(func() {
				metrics.gateApplied("H")
				metrics.measured()
				metrics.algorithmRun("shor", "failed")
				metrics.recordJobExecution(time.Now(), true)
			}, ShouldNotPanic)
			So(metrics.ExportMetrics(), ShouldBeEmpty)
		})
	})
}
