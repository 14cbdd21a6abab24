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
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/query-router/internal/core/domain"
)

// RoutingMetrics collects HTTP traffic and routing decision metrics for the api.
type RoutingMetrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	classificationsTotal *prometheus.CounterVec
	confidence           *prometheus.HistogramVec
	matchedDocuments     *prometheus.HistogramVec
	documentNameHits     *prometheus.CounterVec
	catalogSize          *prometheus.HistogramVec
	breakerState         *prometheus.GaugeVec
}

func NewRoutingMetrics(service string) *RoutingMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qr",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qr",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qr",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	classificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qr",
			Subsystem: "routing",
			Name:      "classifications_total",
			Help:      "Total routed queries by intent and suggested tool.",
		},
		[]string{"service", "intent", "tool"},
	)
	confidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qr",
			Subsystem: "routing",
			Name:      "confidence",
			Help:      "Distribution of reported classification confidence.",
			Buckets:   []float64{0.3, 0.5, 0.7, 0.8, 1, 1.5, 2, 2.5, 3},
		},
		[]string{"service", "intent"},
	)
	matchedDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qr",
			Subsystem: "routing",
			Name:      "matched_documents",
			Help:      "Distribution of matched documents per routed query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	documentNameHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qr",
			Subsystem: "routing",
			Name:      "document_name_hits_total",
			Help:      "Routed queries that resolved a catalog filename.",
		},
		[]string{"service"},
	)
	catalogSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qr",
			Subsystem: "routing",
			Name:      "catalog_size",
			Help:      "Distribution of catalog sizes seen while routing.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"service"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "qr",
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		classificationsTotal,
		confidence,
		matchedDocuments,
		documentNameHits,
		catalogSize,
		breakerState,
	)

	return &RoutingMetrics{
		service:              service,
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		classificationsTotal: classificationsTotal,
		confidence:           confidence,
		matchedDocuments:     matchedDocuments,
		documentNameHits:     documentNameHits,
		catalogSize:          catalogSize,
		breakerState:         breakerState,
	}
}

func (m *RoutingMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *RoutingMetrics) Middleware(next http.Handler) http.Handler {
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
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case path == "/v1/documents/match":
		return path
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

// ObserveRoute records a completed routing decision.
func (m *RoutingMetrics) ObserveRoute(decision domain.RouteDecision) {
	intent := string(decision.Classification.Intent)
	if intent == "" {
		intent = "unknown"
	}
	tool := string(decision.Classification.SuggestedTool)
	if tool == "" {
		tool = "unknown"
	}
	m.classificationsTotal.WithLabelValues(m.service, intent, tool).Inc()
	m.confidence.WithLabelValues(m.service, intent).Observe(decision.Classification.Confidence)
	m.matchedDocuments.WithLabelValues(m.service).Observe(float64(len(decision.MatchedDocumentIDs)))
	m.catalogSize.WithLabelValues(m.service).Observe(float64(decision.CatalogSize))
	if decision.Classification.Context.DocumentName != "" {
		m.documentNameHits.WithLabelValues(m.service).Inc()
	}
}

// ObserveBreakerState matches resilience.StateObserver.
func (m *RoutingMetrics) ObserveBreakerState(operation string, state gobreaker.State) {
	m.breakerState.WithLabelValues(m.service, operation).Set(breakerStateValue(state))
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
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
