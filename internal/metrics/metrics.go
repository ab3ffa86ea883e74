// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "store"

type ServerMetrics struct {
	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	Checkouts       *prometheus.CounterVec
	CheckoutLatency prometheus.Histogram
	CartsSwept      prometheus.Counter
	gatherer        prometheus.Gatherer
}

// NewServerMetrics registers the collectors with reg. Pass prometheus.NewRegistry()
// in tests; main uses the default registry.
func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_total",
		Help:      "Checkout attempts by result.",
	}, []string{"result"})
	checkoutLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Checkout transaction latency.",
		Buckets:   prometheus.DefBuckets,
	})
	swept := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "carts_swept_total",
		Help:      "Expired carts deleted by the janitor.",
	})

	reg.MustRegister(requests, latency, checkouts, checkoutLatency, swept)

	m := &ServerMetrics{
		Requests:        requests,
		LatencyMS:       latency,
		Checkouts:       checkouts,
		CheckoutLatency: checkoutLatency,
		CartsSwept:      swept,
		gatherer:        prometheus.DefaultGatherer,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveCheckout records one checkout outcome.
func (m *ServerMetrics) ObserveCheckout(result string, elapsed time.Duration) {
	m.Checkouts.WithLabelValues(result).Inc()
	m.CheckoutLatency.Observe(elapsed.Seconds())
}

// Handler serves the registry the metrics were registered with.
func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
