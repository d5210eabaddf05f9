// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the panel.

It owns a private registry so tests can build as many instances as they need.
Every recording method is safe to call on a nil [*Metrics], which lets
services run uninstrumented.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels a resource operation result.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeForbidden Outcome = "forbidden"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeError     Outcome = "error"
)

const namespace = "panelkit"

// Metrics holds the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	operations      *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	degraded        *prometheus.CounterVec
}

// New registers the standard collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resource",
			Name:      "operations_total",
			Help:      "Total number of resource operations by outcome",
		},
		[]string{"resource", "operation", "outcome"},
	)
	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of panel cache lookups",
		},
		[]string{"resource", "result"},
	)
	m.degraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resource",
			Name:      "degraded_total",
			Help:      "Best-effort concern failures that did not fail the request",
		},
		[]string{"resource", "concern"},
	)

	m.registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.operations,
		m.cacheLookups,
		m.degraded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry for custom collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// # Recording

// ObserveOperation counts one resource operation.
func (m *Metrics) ObserveOperation(resource, operation string, outcome Outcome) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(resource, operation, string(outcome)).Inc()
}

// ObserveCache counts one cache lookup.
func (m *Metrics) ObserveCache(resource string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(resource, result).Inc()
}

// ObserveDegraded counts a swallowed concern failure (cache, versioning).
func (m *Metrics) ObserveDegraded(resource, concern string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(resource, concern).Inc()
}

// # HTTP Middleware

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (writer *statusWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

// Middleware records duration and status per chi route pattern, so ids in
// paths do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		recorder := &statusWriter{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.requestDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(request.Method, route, strconv.Itoa(recorder.status)).Inc()
	})
}
