package obs

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	busMessages    *prometheus.CounterVec
	busLatency     *prometheus.HistogramVec
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	sessionsOpen   prometheus.Gauge
	outboxEvents   *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		busMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_messages_total",
			Help:      "Commands and queries dispatched, by outcome.",
		}, []string{"kind", "key", "outcome"}),
		busLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bus_message_duration_seconds",
			Help:      "Command and query handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "key"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Calls to the hotel backend by endpoint and status.",
		}, []string{"endpoint", "status"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Hotel backend latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		sessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "browse_sessions_open",
			Help:      "Browse sessions currently mounted.",
		}),
		outboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox records relayed, by result.",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"kind", "result"}),
	}
	m.Registry.MustRegister(
		m.httpRequests,
		m.httpLatency,
		m.busMessages,
		m.busLatency,
		m.backendCalls,
		m.backendLatency,
		m.sessionsOpen,
		m.outboxEvents,
		m.cacheLookups,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

// HTTP records one sample per request, labelled by route template.
func (m *Metrics) HTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Observe implements the bus instrumentation hook.
func (m *Metrics) Observe(kind, key string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.busMessages.WithLabelValues(kind, key, outcome).Inc()
	m.busLatency.WithLabelValues(kind, key).Observe(elapsed.Seconds())
}

// ObserveBackend records one hotel backend call. status is 0 when no response arrived.
func (m *Metrics) ObserveBackend(endpoint string, status int, elapsed time.Duration) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	m.backendCalls.WithLabelValues(endpoint, label).Inc()
	m.backendLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) SessionOpened() { m.sessionsOpen.Inc() }
func (m *Metrics) SessionClosed() { m.sessionsOpen.Dec() }

// OutboxRelayed counts a relay attempt.
func (m *Metrics) OutboxRelayed(err error) {
	if err != nil {
		m.outboxEvents.WithLabelValues("failed").Inc()
		return
	}
	m.outboxEvents.WithLabelValues("sent").Inc()
}

// CacheLookup counts a catalog cache lookup. result is "hit", "miss" or "error".
func (m *Metrics) CacheLookup(kind, result string) {
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}
