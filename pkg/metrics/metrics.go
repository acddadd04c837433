// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginsTotal counts login attempts by outcome (success or problem kind).
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenantgate",
		Name:      "logins_total",
		Help:      "Tenant login attempts by outcome.",
	}, []string{"outcome"})

	// AuthorizationsTotal counts bearer token checks on protected routes.
	AuthorizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenantgate",
		Name:      "authorizations_total",
		Help:      "Bearer token checks on protected routes by outcome.",
	}, []string{"outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tenantgate",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
