package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors for the planning pipeline. Registered once via Register;
// callers hold no state of their own.
var (
	// SolveDuration observes wall-clock time per solve call.
	SolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bladealloc_solve_duration_seconds",
		Help:    "Wall-clock duration of constraint solve calls.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	// SearchNodes counts branch-and-bound nodes explored across solves.
	SearchNodes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bladealloc_search_nodes_total",
		Help: "Total search nodes explored by the solver.",
	})

	// TasksPlaced reports the worked count of the most recent solve.
	TasksPlaced = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bladealloc_tasks_placed",
		Help: "Number of tasks placed by the most recent solve.",
	})

	// SolvesTotal counts solve calls by outcome (ok, infeasible, timeout,
	// error).
	SolvesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bladealloc_solves_total",
		Help: "Total solve calls by outcome.",
	}, []string{"outcome"})
)

// Register registers all collectors with the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(SolveDuration, SearchNodes, TasksPlaced, SolvesTotal)
}
