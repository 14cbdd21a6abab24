package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/query-router/internal/core/domain"
)

// WorkerMetrics tracks route requests served over the message bus.
type WorkerMetrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
	intentTotal     *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qr",
			Subsystem: "worker",
			Name:      "route_requests_total",
			Help:      "Total route requests handled by status.",
		},
		[]string{"service", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qr",
			Subsystem: "worker",
			Name:      "route_request_duration_seconds",
			Help:      "Route request handling duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qr",
			Subsystem: "worker",
			Name:      "route_requests_in_flight",
			Help:      "Number of in-flight route requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	intentTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qr",
			Subsystem: "worker",
			Name:      "route_intents_total",
			Help:      "Total routed queries by intent.",
		},
		[]string{"service", "intent"},
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

	registry.MustRegister(requestTotal, requestDuration, requestInFlight, intentTotal, breakerState)

	return &WorkerMetrics{
		service:         service,
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		intentTotal:     intentTotal,
		breakerState:    breakerState,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRequest() {
	m.requestInFlight.Inc()
}

func (m *WorkerMetrics) FinishRequest(duration time.Duration, err error) {
	m.requestInFlight.Dec()

	status := "success"
	if err != nil {
		status = domain.KindLabel(err)
	}

	m.requestTotal.WithLabelValues(m.service, status).Inc()
	m.requestDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveRoute(decision domain.RouteDecision) {
	intent := string(decision.Classification.Intent)
	if intent == "" {
		intent = "unknown"
	}
	m.intentTotal.WithLabelValues(m.service, intent).Inc()
}

func (m *WorkerMetrics) ObserveBreakerState(operation string, state gobreaker.State) {
	m.breakerState.WithLabelValues(m.service, operation).Set(breakerStateValue(state))
}
