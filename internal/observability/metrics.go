package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndpointCharts   = "charts"
	EndpointTopUsers = "top_users"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector holds the Prometheus metrics of the dashboard. Each collector
// owns its registry so tests can create as many as they need.
type Collector struct {
	registry *prometheus.Registry

	Fetches       *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	StaleDropped  prometheus.Counter
	DatasetPoints prometheus.Gauge
	CatalogSize   prometheus.Gauge
}

// NewCollector creates and registers the metrics under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Fetches issued to the data service by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Fetch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		StaleDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_responses_dropped_total",
				Help:      "Successful responses discarded because a newer refresh was issued",
			},
		),
		DatasetPoints: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_points",
				Help:      "Number of data points in the published dataset",
			},
		),
		CatalogSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_entries",
				Help:      "Number of chart kinds offered by the catalog",
			},
		),
	}

	registry.MustRegister(c.Fetches, c.FetchDuration, c.StaleDropped, c.DatasetPoints, c.CatalogSize)
	return c
}

// Registry exposes the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one finished fetch.
func (c *Collector) ObserveFetch(endpoint string, seconds float64, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	c.Fetches.WithLabelValues(endpoint, outcome).Inc()
	c.FetchDuration.WithLabelValues(endpoint).Observe(seconds)
}
