// Package metrics exposes the Prometheus collectors recorded by the HTTP
// layer, the run ledger and the external-service clients.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runjourney_http_requests_total",
		Help: "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "runjourney_http_request_duration_seconds",
		Help:    "HTTP request latency by endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	ExternalRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runjourney_external_requests_total",
		Help: "Outbound calls to directory/geocoder/routing by outcome.",
	}, []string{"service", "outcome"})

	RunsRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "runjourney_runs_registered_total",
		Help: "Runs accepted by the ledger.",
	})

	RunsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "runjourney_runs_deleted_total",
		Help: "Runs removed from the ledger.",
	})

	PositionResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runjourney_position_resolutions_total",
		Help: "Position resolutions by outcome (advanced, origin, failed).",
	}, []string{"outcome"})
)

// RecordExternal counts one outbound call. outcome is ok, error or fallback.
func RecordExternal(service, outcome string) {
	ExternalRequestsTotal.WithLabelValues(service, outcome).Inc()
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
