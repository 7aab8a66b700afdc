// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics declares the Prometheus collectors exported on /metrics.
// Collectors register with the default registry at init time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastetrail_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration measures request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tastetrail_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	// GatewayFetches counts CMS page fetches.
	// Labels:
	//   - collection: content collection type
	//   - outcome: "success", "error", "rejected" (breaker open)
	GatewayFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastetrail_gateway_fetches_total",
			Help: "Total number of CMS page fetches",
		},
		[]string{"collection", "outcome"},
	)

	// BreakerState reports the CMS circuit breaker state
	// (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tastetrail_gateway_breaker_state",
			Help: "CMS circuit breaker state",
		},
	)

	// CacheLookups counts response cache lookups by cache name and result.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastetrail_cache_lookups_total",
			Help: "Response cache lookups",
		},
		[]string{"cache", "result"},
	)

	// CollectionMutations counts optimistic collection mutations by outcome
	// ("confirmed", "rolled_back", "conflict").
	CollectionMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastetrail_collection_mutations_total",
			Help: "Optimistic collection post mutations",
		},
		[]string{"action", "outcome"},
	)

	// HandlerPanics counts panics recovered from handlers by route pattern.
	HandlerPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastetrail_handler_panics_total",
			Help: "Panics recovered from HTTP handlers",
		},
		[]string{"route"},
	)
)
