// Package metrics defines the Prometheus collectors for the visualizer
// server and exposes the scrape handler mounted at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SearchesStarted counts every run created, stepwise or drained.
	SearchesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "astar",
		Subsystem: "search",
		Name:      "runs_started_total",
		Help:      "Total A* runs started",
	})

	// SearchesCompleted counts terminated runs by outcome.
	// Labels: outcome (path_found, no_path)
	SearchesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "astar",
		Subsystem: "search",
		Name:      "runs_completed_total",
		Help:      "Total A* runs that reached a terminal event",
	}, []string{"outcome"})

	// CellsExpanded tracks how many cells each completed run closed.
	CellsExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "astar",
		Subsystem: "search",
		Name:      "cells_expanded",
		Help:      "Cells closed per completed run",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
	})

	// PathLength tracks the cell count of found paths.
	PathLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "astar",
		Subsystem: "search",
		Name:      "path_length_cells",
		Help:      "Cells in each found path",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 10),
	})

	// APIRequests counts REST calls by route template and method.
	// Labels: route, method
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "astar",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total API requests by route and method",
	}, []string{"route", "method"})

	// ActiveSessions gauges the number of live grid sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "astar",
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Currently active grid sessions",
	})
)

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
