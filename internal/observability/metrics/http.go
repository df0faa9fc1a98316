package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	parseTotal          *prometheus.CounterVec
	parseDuration       *prometheus.HistogramVec
	parsePages          *prometheus.HistogramVec
	llmUnavailableTotal *prometheus.CounterVec
	reviewFlaggedTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medparse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medparse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medparse",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	parseTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medparse",
			Subsystem: "pipeline",
			Name:      "parse_total",
			Help:      "Total parse requests by outcome.",
		},
		[]string{"service", "status"},
	)
	parseDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medparse",
			Subsystem: "pipeline",
			Name:      "parse_duration_seconds",
			Help:      "End-to-end parse duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		},
		[]string{"service"},
	)
	parsePages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medparse",
			Subsystem: "pipeline",
			Name:      "recognized_pages",
			Help:      "Distribution of recognized pages per parsed document.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 50},
		},
		[]string{"service"},
	)
	llmUnavailableTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medparse",
			Subsystem: "pipeline",
			Name:      "llm_unavailable_total",
			Help:      "Total parses that fell back to pattern-only extraction.",
		},
		[]string{"service"},
	)
	reviewFlaggedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medparse",
			Subsystem: "pipeline",
			Name:      "review_flagged_total",
			Help:      "Total parses flagged for manual review.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		parseTotal,
		parseDuration,
		parsePages,
		llmUnavailableTotal,
		reviewFlaggedTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		parseTotal:          parseTotal,
		parseDuration:       parseDuration,
		parsePages:          parsePages,
		llmUnavailableTotal: llmUnavailableTotal,
		reviewFlaggedTotal:  reviewFlaggedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
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
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordParse(service, status string, pages int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.parseTotal.WithLabelValues(service, status).Inc()
	m.parseDuration.WithLabelValues(service).Observe(duration.Seconds())
	if pages > 0 {
		m.parsePages.WithLabelValues(service).Observe(float64(pages))
	}
}

func (m *HTTPServerMetrics) RecordLLMUnavailable(service string) {
	m.llmUnavailableTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordReviewFlagged(service string) {
	m.reviewFlaggedTotal.WithLabelValues(service).Inc()
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
