package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/pkg/metrics"
)

func TestNewManager(t *testing.T) {
	Convey("Given a private registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager registers with a custom namespace", func() {
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(reg),
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("unit"),
				metrics.WithHistogramBuckets([]float64{1, 10}),
				metrics.WithCustomLabels(map[string]string{"env": "ci"}),
			)

			Convey("Then the manager is created and collectors are registered", func() {
				So(m, ShouldNotBeNil)
				_, err := reg.Gather()
				So(err, ShouldBeNil)
			})
		})

		Convey("When a second manager uses the same registry", func() {
			metrics.NewManager(metrics.WithPrometheusRegistry(reg))

			Convey("Then duplicate registration panics", func() {
				So(func() { metrics.NewManager(metrics.WithPrometheusRegistry(reg)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global registry", t, func() {
		reg := metrics.GetRegistry()
		So(reg, ShouldNotBeNil)

		Convey("When ledger and ranking events are recorded", func() {
			metrics.RecordLike("created")
			metrics.RecordOwnerInterest("created")
			metrics.RecordMatchCreated("additive")
			metrics.RecordPromotionSkipped("exists")
			metrics.RecordFilterRejection("budget")
			metrics.RecordScore("additive", 42)
			metrics.RecordRankRequest("ok", 3)
			metrics.RecordCandidatesEvaluated(4)
			metrics.RecordCandidatesReturned(2)
			metrics.RecordDistanceFailure("timeout")
			metrics.RecordStoreLatency("memory", "insert_like", 0.2)
			metrics.RecordHTTPRequest("/v1/likes", "POST", "201")
			metrics.RecordHTTPRequestDuration("/v1/likes", "POST", "201", 1.5)
			metrics.RecordErrorByEndpoint("/v1/likes", "POST", "conflict")

			Convey("Then the families are exported", func() {
				names := familyNames(reg)
				So(names, ShouldContainKey, "paddock_matching_likes_total")
				So(names, ShouldContainKey, "paddock_matching_mutual_matches_created_total")
				So(names, ShouldContainKey, "paddock_matching_filter_rejections_total")
				So(names, ShouldContainKey, "paddock_matching_http_requests_total")
			})
		})

		Convey("When the breaker state changes", func() {
			metrics.UpdateDistanceBreakerState("open")

			Convey("Then only the open series is set", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				values := map[string]float64{}
				for _, f := range families {
					if f.GetName() != "paddock_matching_distance_breaker_state" {
						continue
					}
					for _, m := range f.GetMetric() {
						for _, l := range m.GetLabel() {
							if l.GetName() == "state" {
								values[l.GetValue()] = m.GetGauge().GetValue()
							}
						}
					}
				}
				So(values["open"], ShouldEqual, 1)
				So(values["closed"], ShouldEqual, 0)
				So(values["half-open"], ShouldEqual, 0)
			})
		})
	})
}

func familyNames(reg *prometheus.Registry) map[string]bool {
	families, err := reg.Gather()
	if err != nil {
		return nil
	}
	out := make(map[string]bool, len(families))
	for _, f := range families {
		out[f.GetName()] = true
	}
	return out
}
