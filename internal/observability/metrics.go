package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "weather_dashboard"

// Metrics holds the Prometheus collectors for the dashboard service.
type Metrics struct {
	// Provider calls. labels: endpoint={current,forecast}, outcome={success,not_found,unauthorized,unavailable}
	ProviderRequests *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec // labels: endpoint

	// Dashboard state transitions. labels: status={loading,ready,failed}
	Transitions *prometheus.CounterVec
	// Guarded intents that were dropped. labels: reason
	IgnoredIntents *prometheus.CounterVec
	Subscribers    prometheus.Gauge

	// HTTP surface.
	HTTPRequests       *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration       *prometheus.HistogramVec // labels: method, route
	HTTPActiveRequests prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. Tests pass
// a fresh prometheus.NewRegistry() to avoid duplicate registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ProviderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Weather provider requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ProviderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Dashboard state transitions by target status.",
		}, []string{"status"}),
		IgnoredIntents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_intents_total",
			Help:      "User intents dropped by controller guards.",
		}, []string{"reason"}),
		Subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_subscribers",
			Help:      "Number of active state subscribers.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "Number of in-flight HTTP requests.",
		}),
	}
}
