// Package metrics exposes Prometheus instrumentation for the time tracking
// service. Collectors register on a dedicated registry so tests can run in
// parallel without duplicate registration panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "timeclock"
	subsystem = "tracking"
)

// Manager owns the collectors and satisfies both the tracking service's and
// the HTTP middleware's metrics interfaces.
type Manager struct {
	registry *prometheus.Registry

	sessionsStarted prometheus.Counter
	sessionsStopped prometheus.Counter
	sessionMinutes  prometheus.Histogram
	openSessions    prometheus.Gauge
	clockSkewClamps prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager with its own registry.
func NewManager() *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}
	auto := promauto.With(m.registry)

	m.sessionsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_started_total",
		Help:      "Total number of work sessions opened",
	})

	m.sessionsStopped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_stopped_total",
		Help:      "Total number of work sessions closed",
	})

	m.sessionMinutes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "session_duration_minutes",
		Help:      "Histogram of closed session lengths in minutes",
		Buckets:   []float64{15, 30, 60, 120, 240, 480, 720},
	})

	m.openSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "open_sessions",
		Help:      "Number of currently open work sessions",
	})

	m.clockSkewClamps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "clock_skew_clamps_total",
		Help:      "Total number of clock-outs clamped to zero duration because the clock ran backwards",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method, and status code",
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	return m
}

// Handler returns the exposition endpoint for this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for additional collectors.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// SetOpenSessions seeds the open-session gauge from the store. Inc and Dec
// only track transitions observed by this process, so the gauge must be
// anchored to the persisted count at startup or sessions that were already
// open would drive it negative on their clock-out.
func (m *Manager) SetOpenSessions(count int) {
	m.openSessions.Set(float64(count))
}

// SessionStarted records a newly opened session.
func (m *Manager) SessionStarted() {
	m.sessionsStarted.Inc()
	m.openSessions.Inc()
}

// SessionStopped records a closed session and its length.
func (m *Manager) SessionStopped(durationMinutes int) {
	m.sessionsStopped.Inc()
	m.openSessions.Dec()
	m.sessionMinutes.Observe(float64(durationMinutes))
}

// ClockSkewClamped records a clock-out whose duration was clamped to zero.
func (m *Manager) ClockSkewClamped() {
	m.clockSkewClamps.Inc()
}

// ObserveRequest records one HTTP request.
func (m *Manager) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
