package collector

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for a collection run.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AcceptedTotal   *prometheus.CounterVec
	SkippedTotal    *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	PriceCacheHits  prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodvalue_requests_total",
			Help: "Total HTTP requests issued to upstream APIs.",
		},
		[]string{"endpoint"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodvalue_request_duration_seconds",
			Help:    "HTTP request latency for upstream APIs.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	accepted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodvalue_products_accepted_total",
			Help: "Products appended to the raw store.",
		},
		[]string{"category"},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodvalue_products_skipped_total",
			Help: "Products not appended, by reason.",
		},
		[]string{"reason"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodvalue_errors_total",
			Help: "Total number of upstream errors by endpoint and type.",
		},
		[]string{"endpoint", "error_type"},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodvalue_price_cache_hits_total",
			Help: "Price lookups answered from the in-run memo.",
		},
	)

	registry.MustRegister(requests, requestDuration, accepted, skipped, errorsTotal, cacheHits)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		AcceptedTotal:   accepted,
		SkippedTotal:    skipped,
		ErrorsTotal:     errorsTotal,
		PriceCacheHits:  cacheHits,
	}
}

// ObserveRequest counts a request against endpoint and records its latency.
func (m *Metrics) ObserveRequest(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// IncAccepted increments the accepted counter for category.
func (m *Metrics) IncAccepted(category string) {
	if m == nil {
		return
	}
	m.AcceptedTotal.WithLabelValues(category).Inc()
}

// IncSkipped increments the skipped counter for reason.
func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(reason).Inc()
}

// IncError increments the errors counter for an endpoint and type label.
func (m *Metrics) IncError(endpoint, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(endpoint, errorType).Inc()
}

// IncCacheHit increments the price memo hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.PriceCacheHits.Inc()
}

// WriteTextfile writes the registry in the Prometheus text format, for
// pickup by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(filename string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(filename, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
