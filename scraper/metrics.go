package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry             *prometheus.Registry
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      prometheus.Histogram
	ShopsDiscovered      prometheus.Counter
	LeafletsScrapedTotal prometheus.Counter
	LeafletsSkippedTotal *prometheus.CounterVec
	ErrorsTotal          *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "HTTP request latency for scraper requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	shopsDiscovered := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_shops_discovered_total",
			Help: "Total number of shops found in the sidebar catalog.",
		},
	)
	leafletsScraped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_leaflets_scraped_total",
			Help: "Total number of leaflets sent to the pipeline.",
		},
	)
	leafletsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_leaflets_skipped_total",
			Help: "Total number of leaflet cards skipped by reason.",
		},
		[]string{"reason"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, shopsDiscovered, leafletsScraped, leafletsSkipped, errorsTotal)

	return &Metrics{
		Registry:             registry,
		RequestsTotal:        requests,
		RequestDuration:      requestDuration,
		ShopsDiscovered:      shopsDiscovered,
		LeafletsScrapedTotal: leafletsScraped,
		LeafletsSkippedTotal: leafletsSkipped,
		ErrorsTotal:          errorsTotal,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncShops increments the discovered shops counter.
func (m *Metrics) IncShops() {
	if m == nil {
		return
	}
	m.ShopsDiscovered.Inc()
}

// IncLeaflets increments the leaflets scraped counter.
func (m *Metrics) IncLeaflets() {
	if m == nil {
		return
	}
	m.LeafletsScrapedTotal.Inc()
}

// IncSkipped increments the skipped leaflets counter for a reason label.
func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.LeafletsSkippedTotal.WithLabelValues(reason).Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
