package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the TeamTrack API.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthFailuresTotal  *prometheus.CounterVec
	AuthSuccessesTotal *prometheus.CounterVec
	RegistrationsTotal *prometheus.CounterVec

	RateLimitRejectionsTotal *prometheus.CounterVec

	// Audit collector.
	AuditBufferSize    prometheus.Gauge
	AuditFlushesTotal  *prometheus.CounterVec
	AuditFlushDuration prometheus.Histogram
	AuditEventsTotal   prometheus.Counter

	ServerStartTime prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamtrack_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "teamtrack_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamtrack_auth_failures_total",
			Help: "Total number of rejected logins and tokens.",
		}, []string{"auth_type"}),

		AuthSuccessesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamtrack_auth_successes_total",
			Help: "Total number of successful logins.",
		}, []string{"auth_type"}),

		RegistrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamtrack_registrations_total",
			Help: "Total number of registered accounts by role.",
		}, []string{"role"}),

		RateLimitRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamtrack_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}, []string{"scope"}),

		AuditBufferSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "teamtrack_audit_buffer_size",
			Help: "Current number of buffered audit events.",
		}),

		AuditFlushesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamtrack_audit_flushes_total",
			Help: "Total number of audit buffer flushes.",
		}, []string{"status"}),

		AuditFlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "teamtrack_audit_flush_duration_seconds",
			Help:    "Duration of audit flushes in seconds.",
			Buckets: prometheus.DefBuckets,
		}),

		AuditEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamtrack_audit_events_total",
			Help: "Total number of audit events recorded.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "teamtrack_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthFailuresTotal,
		m.AuthSuccessesTotal,
		m.RegistrationsTotal,
		m.RateLimitRejectionsTotal,
		m.AuditBufferSize,
		m.AuditFlushesTotal,
		m.AuditFlushDuration,
		m.AuditEventsTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PrometheusHandler serves the registry in the Prometheus exposition format.
func (m *Metrics) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

func (m *Metrics) ObserveRequest(method, pattern string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pattern).Observe(elapsed.Seconds())
}

func (m *Metrics) IncAuthFailure(authType string) {
	m.AuthFailuresTotal.WithLabelValues(authType).Inc()
}

func (m *Metrics) IncAuthSuccess(authType string) {
	m.AuthSuccessesTotal.WithLabelValues(authType).Inc()
}

func (m *Metrics) IncRegistration(role string) {
	m.RegistrationsTotal.WithLabelValues(role).Inc()
}

func (m *Metrics) IncRateLimitRejection(scope string) {
	m.RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
}

// Audit collector hooks.

func (m *Metrics) SetAuditBufferSize(n int) {
	m.AuditBufferSize.Set(float64(n))
}

func (m *Metrics) IncAuditEvent() {
	m.AuditEventsTotal.Inc()
}

func (m *Metrics) ObserveAuditFlush(elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.AuditFlushesTotal.WithLabelValues(status).Inc()
	m.AuditFlushDuration.Observe(elapsed.Seconds())
}
