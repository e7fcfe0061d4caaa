package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderdesk"

// NewRegistry returns the registry holding application instruments.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler exposes reg merged with the default gatherer, which carries the
// runtime collectors and the gorm pool metrics.
func Handler(reg *prometheus.Registry) gin.HandlerFunc {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, reg}
	h := promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{Registry: reg})
	return gin.WrapH(h)
}

// HTTPMetrics records inbound request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg *prometheus.Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Inbound HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Inbound HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// GinMiddleware observes every request once the handler chain has finished.
func (m *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// SessionMetrics counts profile-endpoint probes and resolution outcomes.
type SessionMetrics struct {
	probes      *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	logins      *prometheus.CounterVec
}

func NewSessionMetrics(reg *prometheus.Registry) *SessionMetrics {
	m := &SessionMetrics{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "profile_probes_total",
			Help:      "Profile endpoint calls made while resolving a session.",
		}, []string{"role_type", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "resolutions_total",
			Help:      "Session resolutions by resulting role.",
		}, []string{"role", "hinted"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by role type and outcome.",
		}, []string{"role_type", "outcome"}),
	}
	reg.MustRegister(m.probes, m.resolutions, m.logins)
	return m
}

func (m *SessionMetrics) RecordProbe(roleType string, found bool) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(roleType, outcome(found)).Inc()
}

func (m *SessionMetrics) RecordResolution(role string, hinted bool) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(role, strconv.FormatBool(hinted)).Inc()
}

func (m *SessionMetrics) RecordLogin(roleType, result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(roleType, result).Inc()
}

// OrderMetrics counts order lifecycle events.
type OrderMetrics struct {
	drafts      *prometheus.CounterVec
	submissions *prometheus.CounterVec
	vouchers    prometheus.Counter
}

func NewOrderMetrics(reg *prometheus.Registry) *OrderMetrics {
	m := &OrderMetrics{
		drafts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "drafts_total",
			Help:      "Order drafts by order-number source.",
		}, []string{"number_source"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "submissions_total",
			Help:      "Order submissions by outcome.",
		}, []string{"outcome"}),
		vouchers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "vouchers_rendered_total",
			Help:      "Rendered sales-order voucher PDFs.",
		}),
	}
	reg.MustRegister(m.drafts, m.submissions, m.vouchers)
	return m
}

func (m *OrderMetrics) RecordDraft(source string) {
	if m == nil {
		return
	}
	m.drafts.WithLabelValues(source).Inc()
}

func (m *OrderMetrics) RecordSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *OrderMetrics) RecordVoucher() {
	if m == nil {
		return
	}
	m.vouchers.Inc()
}

func outcome(ok bool) string {
	if ok {
		return "found"
	}
	return "empty"
}
