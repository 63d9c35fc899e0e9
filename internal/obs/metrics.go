package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level Prometheus metrics, auto-registered via promauto so the
// diagnostics server's /metrics handler needs no explicit registry wiring.
var (
	classesLoadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "javalineage",
			Subsystem: "loader",
			Name:      "classes_total",
			Help:      "Total classes processed by the loader, by outcome.",
		},
		[]string{"outcome"}, // "loaded", "skipped"
	)

	phaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "javalineage",
			Subsystem: "analysis",
			Name:      "phase_duration_seconds",
			Help:      "Duration of each pipeline phase in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"phase"}, // "load", "dataflow", "typehierarchy", "branch", "endpoint"
	)

	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "javalineage",
		Subsystem: "graph",
		Name:      "nodes",
		Help:      "Node count of the most recently built program graph.",
	})

	graphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "javalineage",
		Subsystem: "graph",
		Name:      "edges",
		Help:      "Edge count of the most recently built program graph.",
	})
)

// RecordLoadCounts records the loader's classes-loaded/classes-skipped
// totals for one Load call.
func RecordLoadCounts(loaded, skipped int) {
	classesLoadedTotal.WithLabelValues("loaded").Add(float64(loaded))
	classesLoadedTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// ObservePhase records how long a named pipeline phase took.
func ObservePhase(phase string, d time.Duration) {
	phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetGraphSize updates the node/edge gauges to the given graph's size.
func SetGraphSize(nodeCount, edgeCount int) {
	graphNodes.Set(float64(nodeCount))
	graphEdges.Set(float64(edgeCount))
}
