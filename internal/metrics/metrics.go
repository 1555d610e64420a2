package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the application's prometheus collectors. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	ReqCount    *prometheus.CounterVec
	ReqDuration *prometheus.HistogramVec
	ErrorCount  *prometheus.CounterVec

	ActivitiesLogged *prometheus.CounterVec
	EmissionKg       *prometheus.CounterVec
	BadgesAwarded    *prometheus.CounterVec

	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReqCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrace_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		ReqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecotrace_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ErrorCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrace_errors_total",
				Help: "Errors returned to clients by type",
			},
			[]string{"handler", "type"},
		),
		ActivitiesLogged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrace_activities_logged_total",
				Help: "Activities logged",
			},
			[]string{"activity_type", "recognized"},
		),
		EmissionKg: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrace_emission_kg_total",
				Help: "Sum of logged emissions in kg CO2e",
			},
			[]string{"activity_type"},
		),
		BadgesAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrace_badges_awarded_total",
				Help: "Badges awarded",
			},
			[]string{"badge"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecotrace_db_query_duration_seconds",
				Help:    "Database round-trip duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op"},
		),
		QueryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrace_db_query_errors_total",
				Help: "Failed database round trips",
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(
		m.ReqCount, m.ReqDuration, m.ErrorCount,
		m.ActivitiesLogged, m.EmissionKg, m.BadgesAwarded,
		m.QueryDuration, m.QueryErrors,
	)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.ReqCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.ReqDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveError counts an error response.
func (m *Metrics) ObserveError(handler, errType string) {
	if m == nil {
		return
	}
	m.ErrorCount.WithLabelValues(handler, errType).Inc()
}

// ObserveActivity records a committed activity log.
func (m *Metrics) ObserveActivity(activityType string, recognized bool, emissionKg float64, badge string) {
	if m == nil {
		return
	}
	m.ActivitiesLogged.WithLabelValues(activityType, strconv.FormatBool(recognized)).Inc()
	m.EmissionKg.WithLabelValues(activityType).Add(emissionKg)
	if badge != "" {
		m.BadgesAwarded.WithLabelValues(badge).Inc()
	}
}

// ObserveQuery records a database round trip.
func (m *Metrics) ObserveQuery(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		m.QueryErrors.WithLabelValues(op).Inc()
	}
}
