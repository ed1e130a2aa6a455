package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signage backend.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Content plan metrics
	ContentPlanCreatives prometheus.Gauge
	VASTResponses        *prometheus.CounterVec

	// Campaign update metrics
	OverrideUpdates     prometheus.Counter
	PersistenceFailures prometheus.Counter

	// Gateway metrics
	GatewayErrors            *prometheus.CounterVec
	CustomFieldParseFailures *prometheus.CounterVec
	DBConnections            *prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	PanicsRecovered *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
			},
			[]string{"route"},
		),

		ContentPlanCreatives: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "content_plan_creatives",
				Help:      "Number of creatives in the last assembled content plan",
			},
		),
		VASTResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vast_responses_total",
				Help:      "VAST documents served by source",
			},
			[]string{"source"}, // raw, synthesized
		),

		OverrideUpdates: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "override_updates_total",
				Help:      "Campaign overrides accepted",
			},
		),
		PersistenceFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_failures_total",
				Help:      "Best-effort creative writes that failed",
			},
		),

		GatewayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_errors_total",
				Help:      "Creative repository errors by operation",
			},
			[]string{"operation"},
		),
		CustomFieldParseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "custom_field_parse_failures_total",
				Help:      "custom_fields columns that could not be read as a JSON object",
			},
			[]string{"record"},
		),
		DBConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool stats",
			},
			[]string{"state"}, // idle, in_use, total
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"route_class"},
		),
		PanicsRecovered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "panics_recovered_total",
				Help:      "Handler panics recovered by the server",
			},
			[]string{"route"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// SetContentPlanCreatives records the size of the last assembled plan.
func (m *Metrics) SetContentPlanCreatives(n int) {
	if m == nil {
		return
	}
	m.ContentPlanCreatives.Set(float64(n))
}

// RecordVASTResponse records a served VAST document.
func (m *Metrics) RecordVASTResponse(source string) {
	if m == nil {
		return
	}
	m.VASTResponses.WithLabelValues(source).Inc()
}

// RecordOverrideUpdate records an accepted campaign override.
func (m *Metrics) RecordOverrideUpdate() {
	if m == nil {
		return
	}
	m.OverrideUpdates.Inc()
}

// RecordPersistenceFailure records a failed best-effort write.
func (m *Metrics) RecordPersistenceFailure() {
	if m == nil {
		return
	}
	m.PersistenceFailures.Inc()
}

// RecordGatewayError records a failed repository call.
func (m *Metrics) RecordGatewayError(operation string) {
	if m == nil {
		return
	}
	m.GatewayErrors.WithLabelValues(operation).Inc()
}

// RecordCustomFieldParseFailure records an unreadable custom_fields column.
func (m *Metrics) RecordCustomFieldParseFailure(record string) {
	if m == nil {
		return
	}
	m.CustomFieldParseFailures.WithLabelValues(record).Inc()
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	if m == nil {
		return
	}
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(routeClass string) {
	if m == nil {
		return
	}
	m.RateLimitHits.WithLabelValues(routeClass).Inc()
}

// RecordPanic counts a recovered handler panic.
func (m *Metrics) RecordPanic(route string) {
	if m == nil {
		return
	}
	m.PanicsRecovered.WithLabelValues(route).Inc()
}
