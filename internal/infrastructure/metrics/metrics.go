// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "filmorate"

// Registry owns a private Prometheus registry with the HTTP and domain
// event collectors registered on it.
type Registry struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	domainEvents *prometheus.CounterVec

	eventDeliveries *prometheus.CounterVec
	eventHandling   *prometheus.HistogramVec
}

// NewRegistry creates a registry with runtime collectors and the service metrics.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		domainEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "domain",
				Name:      "events_total",
				Help:      "Total number of published domain events",
			},
			[]string{"type"},
		),

		eventDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "eventbus",
				Name:      "deliveries_total",
				Help:      "Event handler runs by event type and outcome",
			},
			[]string{"type", "outcome"},
		),

		eventHandling: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "eventbus",
				Name:      "handler_duration_seconds",
				Help:      "Event handler run time in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"type"},
		),
	}

	r.registry.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.domainEvents,
		r.eventDeliveries,
		r.eventHandling,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// ObserveHTTP records one served request. route is the matched route
// template, not the raw path, to keep label cardinality bounded.
func (r *Registry) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEvent counts a domain event by type.
func (r *Registry) RecordEvent(eventType string) {
	r.domainEvents.WithLabelValues(eventType).Inc()
}

// Outcome label values of filmorate_eventbus_deliveries_total.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ObserveEventDelivery records one event handler run.
func (r *Registry) ObserveEventDelivery(eventType string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.eventDeliveries.WithLabelValues(eventType, outcome).Inc()
	r.eventHandling.WithLabelValues(eventType).Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
