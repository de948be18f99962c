// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics declares the Prometheus collectors exported by citecheck.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Status resolver
	StatusChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citecheck_status_checks_total",
			Help: "URL status checks by outcome (valid, invalid, error_page, transport_error)",
		},
		[]string{"outcome"},
	)

	StatusCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citecheck_status_cache_lookups_total",
			Help: "Status cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	StatusProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "citecheck_status_probe_duration_seconds",
			Help:    "Duration of uncached URL status probes",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
	)

	// Assisted search
	SearchCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citecheck_search_calls_total",
			Help: "Assisted-search calls by backend and outcome (ok, error, timeout, rejected)",
		},
		[]string{"backend", "outcome"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "citecheck_search_duration_seconds",
			Help:    "Assisted-search call duration",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20},
		},
		[]string{"backend"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "citecheck_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// Discovery
	Alternatives = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citecheck_alternatives_total",
			Help: "Alternative discovery attempts by tier (cache, search, authority) and outcome (found, none)",
		},
		[]string{"tier", "outcome"},
	)

	// Orchestrator
	Citations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citecheck_citations_total",
			Help: "Resolved citations by outcome (valid, replaced, invalid, panic)",
		},
		[]string{"outcome"},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "citecheck_batch_duration_seconds",
			Help:    "Wall-clock duration of a resolution batch",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)
)
