package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kma_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for collection and serving.
type Metrics struct {
	// Collection metrics.
	MonthsFetched         *prometheus.CounterVec // labels: outcome={ok,empty,failed}
	ObservationsCollected prometheus.Counter
	ObservationsPublished prometheus.Counter
	CollectorRunning      prometheus.Gauge
	CollectionDuration    prometheus.Histogram

	// Upstream API metrics.
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint={stations,monthly}

	// Dashboard metrics.
	DashboardCache *prometheus.CounterVec // labels: result={hit,miss}
	MergedRecords  prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MonthsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "months_fetched_total",
			Help:      "Monthly fetch attempts by outcome.",
		}, []string{"outcome"}),
		ObservationsCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_collected_total",
			Help:      "Total hourly observations collected from KMA.",
		}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Total observations written to the Kafka topic.",
		}),
		CollectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collector_running",
			Help:      "1 while a collection run is active, 0 otherwise.",
		}),
		CollectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_duration_seconds",
			Help:      "Duration of a complete collection run.",
			Buckets:   []float64{1, 10, 30, 60, 300, 900, 1800, 3600},
		}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "KMA API request duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"endpoint"}),
		DashboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_total",
			Help:      "Dashboard dataset cache lookups by result.",
		}, []string{"result"}),
		MergedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "merged_records",
			Help:      "Records in the most recently merged dashboard dataset.",
		}),
	}

	prometheus.MustRegister(
		m.MonthsFetched,
		m.ObservationsCollected,
		m.ObservationsPublished,
		m.CollectorRunning,
		m.CollectionDuration,
		m.UpstreamDuration,
		m.DashboardCache,
		m.MergedRecords,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MonthsFetched:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "months_fetched_total"}, []string{"outcome"}),
		ObservationsCollected: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "observations_collected_total"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "observations_published_total"}),
		CollectorRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "collector_running"}),
		CollectionDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "collection_duration_seconds"}),
		UpstreamDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "upstream_request_duration_seconds"}, []string{"endpoint"}),
		DashboardCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "dashboard_cache_total"}, []string{"result"}),
		MergedRecords:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "merged_records"}),
	}
}
