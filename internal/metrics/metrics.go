// Package metrics exposes Prometheus collectors for the HTTP layer and the
// authorizer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reservations"

// Registry holds the application collectors on a private prometheus registry.
// A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Logins          *prometheus.CounterVec
	SessionsSwept   prometheus.Counter
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result (success, rejected, error).",
		}, []string{"result"}),
		SessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Expired sessions removed by the sweeper.",
		}),
	}
	r.reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.Logins,
		r.SessionsSwept,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRequest records one finished HTTP request.
func (r *Registry) ObserveRequest(method, route, status string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, status).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (r *Registry) ObserveLogin(result string) {
	if r == nil {
		return
	}
	r.Logins.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveSwept(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.SessionsSwept.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
