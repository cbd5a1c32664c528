package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search integration Prometheus metrics.
var (
	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchgate",
			Name:      "gate_decisions_total",
			Help:      "Search integration decisions by feature and deciding rule",
		},
		[]string{"feature", "result", "reason"}, // result: "integrate" / "bypass"
	)

	CommentSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchgate",
			Name:      "comment_search_duration_seconds",
			Help:      "Comment search duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend"}, // "index" / "store"
	)

	WeightingSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchgate",
			Name:      "weighting_saves_total",
			Help:      "Weighting settings save attempts",
		},
		[]string{"outcome"}, // "ok" / "invalid" / "error"
	)

	FeatureTogglesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchgate",
			Name:      "feature_toggles_total",
			Help:      "Feature activation changes",
		},
		[]string{"feature", "active"},
	)
)

func init() {
	prometheus.MustRegister(GateDecisionsTotal)
	prometheus.MustRegister(CommentSearchDuration)
	prometheus.MustRegister(WeightingSavesTotal)
	prometheus.MustRegister(FeatureTogglesTotal)
}

// GateResult is the result label of a gate decision.
func GateResult(integrate bool) string {
	if integrate {
		return "integrate"
	}
	return "bypass"
}
