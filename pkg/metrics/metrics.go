// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookstore"

// ServerMetrics counts and times HTTP requests.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewServerMetrics creates the HTTP collectors and registers them with reg.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "route"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// OrderMetrics tracks the order lifecycle. A nil *OrderMetrics records nothing.
type OrderMetrics struct {
	Placed      prometheus.Counter
	Transitions *prometheus.CounterVec
	Rejected    *prometheus.CounterVec
}

// NewOrderMetrics creates the order collectors and registers them with reg.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders created from shopping carts.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Order status transitions by target status.",
	}, []string{"status"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "rejected_total",
		Help:      "Failed order operations by operation and error code.",
	}, []string{"op", "code"})

	reg.MustRegister(placed, transitions, rejected)
	return &OrderMetrics{Placed: placed, Transitions: transitions, Rejected: rejected}
}

func (m *OrderMetrics) ObservePlaced() {
	if m == nil {
		return
	}
	m.Placed.Inc()
}

// ObserveTransition counts a successful move to status.
func (m *OrderMetrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(status).Inc()
}

func (m *OrderMetrics) ObserveRejected(op, code string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(op, code).Inc()
}

// Handler serves the collectors registered with gatherer in the prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
