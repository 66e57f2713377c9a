package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for the attendance API.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	SessionsCreated prometheus.Counter
	CheckInOutcomes *prometheus.CounterVec
}

// New registers and returns the application metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classtrack_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "classtrack_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "classtrack_sessions_created_total",
			Help: "Attendance sessions created.",
		}),
		CheckInOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classtrack_checkin_outcomes_total",
			Help: "Check-in attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveOutcome counts one check-in outcome.
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.CheckInOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveSessionCreated counts one created session.
func (m *Metrics) ObserveSessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
}
