package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal     *prometheus.CounterVec
	chatDegradedTotal     *prometheus.CounterVec
	chatSupplementedTotal *prometheus.CounterVec
	chatContextSources    *prometheus.HistogramVec
	chatDuration          *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parts",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parts",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "parts",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parts",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total completed chat turns by classified intent.",
		},
		[]string{"service", "intent"},
	)
	chatDegradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parts",
			Subsystem: "chat",
			Name:      "degraded_total",
			Help:      "Total chat turns answered with a fallback response.",
		},
		[]string{"service", "reason"},
	)
	chatSupplementedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parts",
			Subsystem: "chat",
			Name:      "supplemented_total",
			Help:      "Total chat turns that pulled supplementary vector context.",
		},
		[]string{"service"},
	)
	chatContextSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parts",
			Subsystem: "chat",
			Name:      "context_sources",
			Help:      "Distribution of context records fused per chat turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parts",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "End-to-end chat turn duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatDegradedTotal,
		chatSupplementedTotal,
		chatContextSources,
		chatDuration,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		chatRequestsTotal:     chatRequestsTotal,
		chatDegradedTotal:     chatDegradedTotal,
		chatSupplementedTotal: chatSupplementedTotal,
		chatContextSources:    chatContextSources,
		chatDuration:          chatDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/conversations/") && strings.HasSuffix(path, "/reset"):
		return "/v1/conversations/{thread_id}/reset"
	case strings.HasPrefix(path, "/v1/conversations/"):
		return "/v1/conversations/{thread_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordChat(service, intent string, primary, supplementary int, duration time.Duration) {
	if intent == "" {
		intent = "unknown"
	}
	m.chatRequestsTotal.WithLabelValues(service, intent).Inc()
	m.chatContextSources.WithLabelValues(service).Observe(float64(primary + supplementary))
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())

	if supplementary > 0 {
		m.chatSupplementedTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordChatDegraded(service, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.chatDegradedTotal.WithLabelValues(service, reason).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
