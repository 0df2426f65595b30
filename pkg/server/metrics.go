package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/dragdrop/pkg/dnd"
	"github.com/vango-dev/dragdrop/pkg/protocol"
)

const metricsNamespace = "dragd"

// metrics holds the Prometheus collectors of one Server.
type metrics struct {
	dragsTotal     *prometheus.CounterVec
	dragDuration   prometheus.Histogram
	sessionsActive prometheus.Gauge
	eventsTotal    *prometheus.CounterVec
	decodeErrors   prometheus.Counter
	patchesSent    prometheus.Counter
	movesDropped   prometheus.Counter

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		dragsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "drags_total",
			Help:      "Finished drag sessions by outcome",
		}, []string{"outcome"}),

		dragDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "drag_duration_seconds",
			Help:      "Time from activation to release of activated drags",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),

		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_active",
			Help:      "Number of connected sessions",
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Client events processed by type",
		}, []string{"type"}),

		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "decode_errors_total",
			Help:      "Client frames or events that failed to decode",
		}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "patches_sent_total",
			Help:      "Patches sent to clients",
		}),

		movesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "moves_dropped_total",
			Help:      "Pointer moves dropped by the per-session rate limit",
		}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency; WebSocket requests last the whole session",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// newRegistry creates a registry with the Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// The recording helpers accept a nil receiver so hosts without a server
// (the replay command, tests) need no registry.

func (m *metrics) event(t protocol.EventType) {
	if m != nil {
		m.eventsTotal.WithLabelValues(t.String()).Inc()
	}
}

func (m *metrics) drag(outcome dnd.Outcome, active bool, d time.Duration) {
	if m == nil {
		return
	}
	m.dragsTotal.WithLabelValues(outcome.String()).Inc()
	if active {
		m.dragDuration.Observe(d.Seconds())
	}
}

func (m *metrics) decodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

func (m *metrics) patches(n int) {
	if m != nil {
		m.patchesSent.Add(float64(n))
	}
}

func (m *metrics) rateLimited() {
	if m != nil {
		m.movesDropped.Inc()
	}
}

func (m *metrics) request(route, code string, d time.Duration) {
	if m != nil {
		m.requestsTotal.WithLabelValues(route, code).Inc()
		m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
	}
}
