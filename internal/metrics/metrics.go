// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface HTTP middleware and services use to record
// observations.
type Recorder interface {
	RecordRequest(method, route string, statusCode int, duration time.Duration)
	RecordLogin(provider string)
	RecordHeartbeat()
}

// Collector implements Recorder backed by Prometheus metrics.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	heartbeats      prometheus.Counter
}

// NewCollector creates a new Collector and registers its metrics with the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizdeck_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quizdeck_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizdeck_logins_total",
			Help: "Completed logins by identity provider.",
		}, []string{"provider"}),
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizdeck_presence_heartbeats_total",
			Help: "Total presence heartbeats received.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.logins,
		c.heartbeats,
	)

	return c
}

// RecordRequest records one completed HTTP request.
func (c *Collector) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLogin records one completed login.
func (c *Collector) RecordLogin(provider string) {
	c.logins.WithLabelValues(provider).Inc()
}

// RecordHeartbeat records one presence heartbeat.
func (c *Collector) RecordHeartbeat() {
	c.heartbeats.Inc()
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
