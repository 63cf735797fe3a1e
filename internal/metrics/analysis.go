package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Analysis and search metrics. Registered by RegisterAnalysisMetrics.
var (
	FusionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_runs_total",
			Help:      "Rank fusions performed, by strategy and caller",
		},
		[]string{"strategy", "source"}, // source: "search" / "api"
	)

	GapQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gap_queries_total",
			Help:      "Queries scored for content gaps, by outcome",
		},
		[]string{"result"}, // "gap" / "covered"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Page search duration in seconds, embedding included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)
)

var registerAnalysis sync.Once

// RegisterAnalysisMetrics registers the analysis collectors. Safe to call more than once.
func RegisterAnalysisMetrics() {
	registerAnalysis.Do(func() {
		prometheus.MustRegister(FusionRunsTotal, GapQueriesTotal, SearchDuration)
	})
}
