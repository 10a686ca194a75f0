// Package metrics registers the planner's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	instantiations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_instantiations_total",
			Help: "Template instantiations by result",
		},
		[]string{"result"},
	)

	instantiationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_instantiation_duration_seconds",
			Help:    "Time spent cloning a template into an event",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	taskTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_task_transitions_total",
			Help: "Task status changes by target status and result",
		},
		[]string{"to", "result"},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveInstantiation records one instantiation attempt.
func ObserveInstantiation(started time.Time, err error) {
	instantiations.WithLabelValues(result(err)).Inc()
	instantiationDuration.Observe(time.Since(started).Seconds())
}

// ObserveTransition records one status change attempt.
func ObserveTransition(to string, err error) {
	taskTransitions.WithLabelValues(to, result(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
