package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type LoaderMetrics struct {
	registry *prometheus.Registry

	loadTotal    *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loadInFlight prometheus.Gauge
}

func NewLoaderMetrics(service string) *LoaderMetrics {
	registry := prometheus.NewRegistry()

	loadTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parts",
			Subsystem: "loader",
			Name:      "catalog_load_total",
			Help:      "Total catalog file loads by kind and status.",
		},
		[]string{"service", "kind", "status"},
	)
	loadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parts",
			Subsystem: "loader",
			Name:      "catalog_load_duration_seconds",
			Help:      "Catalog file load duration in seconds by kind and status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "kind", "status"},
	)
	loadInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "parts",
			Subsystem: "loader",
			Name:      "catalog_load_in_flight",
			Help:      "Number of in-flight catalog file loads.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(loadTotal, loadDuration, loadInFlight)

	return &LoaderMetrics{
		registry:     registry,
		loadTotal:    loadTotal,
		loadDuration: loadDuration,
		loadInFlight: loadInFlight,
	}
}

func (m *LoaderMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *LoaderMetrics) StartLoad() {
	m.loadInFlight.Inc()
}

func (m *LoaderMetrics) FinishLoad(service, kind string, duration time.Duration, err error) {
	m.loadInFlight.Dec()

	if kind == "" {
		kind = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}

	m.loadTotal.WithLabelValues(service, kind, status).Inc()
	m.loadDuration.WithLabelValues(service, kind, status).Observe(duration.Seconds())
}
