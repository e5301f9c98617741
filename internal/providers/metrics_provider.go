package providers

import (
	"reactledger/internal/models"
	"reactledger/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(op string, duration time.Duration)
	ObserveRebuild(report *models.RebuildReport)
	IncChannelsSkipped()
	IncQueries(kind string)
	SetLedgerEntries(count int)
}

type MetricsProvider struct {
	requestsTotal         *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	cacheHits             prometheus.Counter
	cacheMisses           prometheus.Counter
	persistenceDuration   *prometheus.HistogramVec
	rebuildsTotal         *prometheus.CounterVec
	rebuildDuration       prometheus.Histogram
	messagesScanned       prometheus.Counter
	observationsProcessed prometheus.Counter
	channelsSkipped       prometheus.Counter
	queriesTotal          *prometheus.CounterVec
	ledgerEntries         prometheus.Gauge
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

func (m *MetricsProvider) ObservePersistenceDuration(op string, duration time.Duration) {
	m.persistenceDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveRebuild(report *models.RebuildReport) {
	if report == nil {
		return
	}
	result := "complete"
	if report.Aborted {
		result = "aborted"
	}
	m.rebuildsTotal.WithLabelValues(result).Inc()
	m.rebuildDuration.Observe(report.Duration().Seconds())
	m.messagesScanned.Add(float64(report.MessagesScanned))
	m.observationsProcessed.Add(float64(report.ObservationsProcessed))
	m.ledgerEntries.Set(float64(report.Entries))
}

func (m *MetricsProvider) IncChannelsSkipped() {
	m.channelsSkipped.Inc()
}

func (m *MetricsProvider) IncQueries(kind string) {
	m.queriesTotal.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) SetLedgerEntries(count int) {
	m.ledgerEntries.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
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
			Name: "rxl_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rxl_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rxl_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rxl_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rxl_persistence_duration_seconds",
			Help:    "Duration of snapshot load and save operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),

		rebuildsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rxl_rebuilds_total",
			Help: "Total number of ledger rebuilds by result",
		}, []string{"result"}),

		rebuildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rxl_rebuild_duration_seconds",
			Help:    "Duration of ledger rebuilds in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),

		messagesScanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rxl_messages_scanned_total",
			Help: "Total number of messages scanned by rebuilds",
		}),

		observationsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rxl_observations_processed_total",
			Help: "Total number of user reactions observed by rebuilds",
		}),

		channelsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rxl_channels_skipped_total",
			Help: "Total number of channels skipped because access was denied",
		}),

		queriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rxl_queries_total",
			Help: "Total number of ledger queries by kind",
		}, []string{"kind"}),

		ledgerEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rxl_ledger_entries",
			Help: "Number of messages in the persisted ledger",
		}),
	}
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                     {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)     {}
func (n *noopMetrics) IncCacheHits()                                        {}
func (n *noopMetrics) IncCacheMisses()                                      {}
func (n *noopMetrics) ObservePersistenceDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) ObserveRebuild(_ *models.RebuildReport)               {}
func (n *noopMetrics) IncChannelsSkipped()                                  {}
func (n *noopMetrics) IncQueries(_ string)                                  {}
func (n *noopMetrics) SetLedgerEntries(_ int)                               {}
