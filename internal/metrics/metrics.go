package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects request-level metrics for the dashboard. It owns
// its own prometheus registry so repeated construction (tests, lambda
// cold starts) never trips duplicate registration.
type Registry struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Registry{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "http_requests_total",
			Help:      "Count of dispatched HTTP requests.",
		}, []string{"method", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of dispatched HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// ObserveRequest records one dispatched request.
func (r *Registry) ObserveRequest(method string, status int, elapsed time.Duration) {
	r.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler exposes the collected metrics in prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
