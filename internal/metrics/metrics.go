// Package metrics holds the Prometheus collectors for the API.
//
// Every Collector owns a private registry rather than using the global
// default one, so tests can build as many servers as they like without
// "duplicate metrics collector registration" panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the metrics exported on /metrics.
//
// All methods are safe on a nil *Collector, which records nothing. That
// lets the service layer run in tests without a registry.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Commands   *prometheus.CounterVec   // by operation and outcome code
	Traversals *prometheus.HistogramVec // by query kind
	GraphUsers prometheus.Gauge
	GraphEdges prometheus.Gauge
}

// NewCollector creates and registers every metric under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_operations_total",
				Help:      "Graph operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Traversals: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_traversal_duration_seconds",
				Help:      "Time spent answering traversal queries",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"query"},
		),
		GraphUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_connected_users",
				Help:      "Users with at least one connection in the last traversal snapshot",
			},
		),
		GraphEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_connections",
				Help:      "Connections in the last traversal snapshot",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.Traversals,
		c.GraphUsers,
		c.GraphEdges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordOperation counts one graph operation. outcome is "ok" or the
// domain error code it failed with.
func (c *Collector) RecordOperation(operation, outcome string) {
	if c == nil {
		return
	}
	c.Commands.WithLabelValues(operation, outcome).Inc()
}

// ObserveTraversal records how long a traversal query took.
func (c *Collector) ObserveTraversal(query string, d time.Duration) {
	if c == nil {
		return
	}
	c.Traversals.WithLabelValues(query).Observe(d.Seconds())
}

// SetGraphSize records the size of the most recent traversal snapshot.
func (c *Collector) SetGraphSize(users, edges int) {
	if c == nil {
		return
	}
	c.GraphUsers.Set(float64(users))
	c.GraphEdges.Set(float64(edges))
}
