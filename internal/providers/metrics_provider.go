package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"onlinesync/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncCycles(status string)
	AddProfiles(outcome string, count int)
	AddDecisions(sink string, action string, count int)
	ObserveCycleDuration(duration time.Duration)
	ObserveSinkDuration(sink string, duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cyclesTotal     *prometheus.CounterVec
	profilesTotal   *prometheus.CounterVec
	decisionsTotal  *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	sinkDuration    *prometheus.HistogramVec
	lastCycle       prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncCycles(status string) {
	m.cyclesTotal.WithLabelValues(status).Inc()
	m.lastCycle.SetToCurrentTime()
}

func (m *MetricsProvider) AddProfiles(outcome string, count int) {
	m.profilesTotal.WithLabelValues(outcome).Add(float64(count))
}

func (m *MetricsProvider) AddDecisions(sink string, action string, count int) {
	m.decisionsTotal.WithLabelValues(sink, action).Add(float64(count))
}

func (m *MetricsProvider) ObserveCycleDuration(duration time.Duration) {
	m.cycleDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveSinkDuration(sink string, duration time.Duration) {
	m.sinkDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code <= 0:
		return "error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onlinesync_requests_total",
			Help: "HTTP requests by endpoint, covering site scrapes and the status server",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onlinesync_request_duration_seconds",
			Help:    "HTTP request duration by endpoint in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onlinesync_cache_hits_total",
			Help: "Total number of tag table cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onlinesync_cache_misses_total",
			Help: "Total number of tag table cache misses",
		}),

		cyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onlinesync_cycles_total",
			Help: "Sync cycles by outcome",
		}, []string{"status"}),

		profilesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onlinesync_profiles_total",
			Help: "Profiles processed by scrape outcome",
		}, []string{"outcome"}),

		decisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onlinesync_decisions_total",
			Help: "Reconciliation decisions applied per sink and action",
		}, []string{"sink", "action"}),

		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onlinesync_cycle_duration_seconds",
			Help:    "Duration of a full sync cycle in seconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		}),

		sinkDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onlinesync_sink_apply_duration_seconds",
			Help:    "Duration of loading and applying one sink in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"sink"}),

		lastCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "onlinesync_last_cycle_timestamp_seconds",
			Help: "Unix time of the last finished cycle",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncCycles(_ string)                               {}
func (n *noopMetrics) AddProfiles(_ string, _ int)                      {}
func (n *noopMetrics) AddDecisions(_ string, _ string, _ int)           {}
func (n *noopMetrics) ObserveCycleDuration(_ time.Duration)             {}
func (n *noopMetrics) ObserveSinkDuration(_ string, _ time.Duration)    {}
