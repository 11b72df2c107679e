// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package metrics collects the prometheus metrics of the cpweb.
// It provides a gin middleware for the REST requests counters and
// latencies, a counter for the domain events (such as created
// reservations or overstayed sessions) which are reported by the
// resources and the sweeper, and the handler which exposes them all.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes all metric names.
const Namespace = "cpweb"

// Event names which are counted by the Observe method.
const (
	EventUserRegistered       = "user_registered"
	EventParkingRegistered    = "parking_registered"
	EventReservationCreated   = "reservation_created"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationCompleted = "reservation_completed"
	EventReservationSwept     = "reservation_swept"
	EventSessionEntered       = "session_entered"
	EventSessionExited        = "session_exited"
	EventSessionOverstayed    = "session_overstayed"
	EventSubscriptionCreated  = "subscription_created"
	EventNoAvailableSpace     = "no_available_space"
	EventSettingsUpdated      = "settings_updated"
)

// Metrics owns a private prometheus registry and the cpweb collectors.
// A nil *Metrics is valid and ignores all observations, so resources
// may be instantiated without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	events   *prometheus.CounterVec
}

// New creates a Metrics instance and registers its collectors, in
// addition to the go runtime and process collectors, in a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Number of handled REST requests.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of handled REST requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "domain_events_total",
			Help:      "Number of reservation, session, and other events.",
		}, []string{"event"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.events,
	)
	return m
}

// Middleware returns a gin middleware which counts the requests and
// measures their latencies. Requests are labeled by their route
// pattern (like /api/cpweb/v1/reservations/:rid) instead of their
// actual path, so the labels cardinality remains bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		m.requests.WithLabelValues(method, route, status).Inc()
		m.latency.WithLabelValues(method, route).Observe(
			time.Since(start).Seconds(),
		)
	}
}

// Observe counts one occurrence of the event.
func (m *Metrics) Observe(event string) {
	m.Add(event, 1)
}

// Add counts n occurrences of the event. Non-positive n are ignored.
func (m *Metrics) Add(event string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.events.WithLabelValues(event).Add(float64(n))
}

// Handler returns an http.Handler which exposes the registered
// metrics in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// Register adds the GET /metrics route to the e engine.
func (m *Metrics) Register(e *gin.Engine) {
	e.GET("/metrics", gin.WrapH(m.Handler()))
}

// Registry returns the underlying registry, e.g., for gathering the
// metrics in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
