package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/chatclaim/pkg/constants"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	CredentialExchanges *prometheus.CounterVec
	CredentialLatency   *prometheus.HistogramVec
	CacheAccess         *prometheus.CounterVec
	KeyFetches          *prometheus.CounterVec
	KeyFetchLatency     prometheus.Histogram
	TokenIssueRequests  *prometheus.CounterVec
	TokenIssueLatency   *prometheus.HistogramVec
	ChatRequests        *prometheus.CounterVec
	ChatLatency         *prometheus.HistogramVec
	HTTPRequests        *prometheus.CounterVec
	HTTPLatency         *prometheus.HistogramVec
	HTTPActiveRequests  prometheus.Gauge
}

// NewMetrics creates the Prometheus metrics and registers them with reg.
// A nil reg selects the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CredentialExchanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatclaim_credential_exchanges_total",
				Help: "Total number of delegated credential exchanges.",
			},
			[]string{"auth_mode", "result"},
		),
		CredentialLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatclaim_credential_exchange_latency_seconds",
				Help:    "Latency of delegated credential exchanges.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"auth_mode"},
		),
		CacheAccess: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatclaim_cache_access_total",
				Help: "Total number of cache lookups.",
			},
			[]string{"cache", "result"},
		),
		KeyFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatclaim_public_key_fetches_total",
				Help: "Total number of public key fetches from the key-management service.",
			},
			[]string{"result"},
		),
		KeyFetchLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatclaim_public_key_fetch_latency_seconds",
				Help:    "Latency of public key fetches.",
				Buckets: prometheus.DefBuckets,
			},
		),
		TokenIssueRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatclaim_token_issue_requests_total",
				Help: "Total number of claim token issue attempts.",
			},
			[]string{"tenant_id", "result", "error_kind"},
		),
		TokenIssueLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatclaim_token_issue_latency_seconds",
				Help:    "Latency of claim token issue attempts.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tenant_id"},
		),
		ChatRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatclaim_chat_requests_total",
				Help: "Total number of requests sent to the chat backend.",
			},
			[]string{"operation", "status", "with_token"},
		),
		ChatLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatclaim_chat_request_latency_seconds",
				Help:    "Latency of chat backend requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatclaim_http_requests_total",
				Help: "Total number of HTTP requests served.",
			},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatclaim_http_request_duration_seconds",
				Help:    "Duration of HTTP requests served.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		HTTPActiveRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chatclaim_http_active_requests",
				Help: "Number of HTTP requests in flight.",
			},
		),
	}
}

// RecordCredentialExchange records one credential exchange.
func (m *Metrics) RecordCredentialExchange(authMode string, success bool, duration time.Duration) {
	m.CredentialExchanges.WithLabelValues(authMode, result(success)).Inc()
	m.CredentialLatency.WithLabelValues(authMode).Observe(duration.Seconds())
}

// RecordCacheAccess records a cache hit or miss.
func (m *Metrics) RecordCacheAccess(cacheType string, hit bool) {
	label := constants.CacheMiss
	if hit {
		label = constants.CacheHit
	}
	m.CacheAccess.WithLabelValues(cacheType, label).Inc()
}

// RecordKeyFetch records a public key fetch.
func (m *Metrics) RecordKeyFetch(duration time.Duration, err error) {
	m.KeyFetches.WithLabelValues(result(err == nil)).Inc()
	m.KeyFetchLatency.Observe(duration.Seconds())
}

// RecordTokenIssue records a claim token issue attempt.
func (m *Metrics) RecordTokenIssue(tenantID string, success bool, duration time.Duration, errorKind string) {
	m.TokenIssueRequests.WithLabelValues(tenantID, result(success), errorKind).Inc()
	m.TokenIssueLatency.WithLabelValues(tenantID).Observe(duration.Seconds())
}

// RecordChatRequest records a chat backend request.
func (m *Metrics) RecordChatRequest(operation string, statusCode int, withToken bool, duration time.Duration) {
	m.ChatRequests.WithLabelValues(operation, strconv.Itoa(statusCode), strconv.FormatBool(withToken)).Inc()
	m.ChatLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// ActiveRequestsInc increments the in-flight request gauge.
func (m *Metrics) ActiveRequestsInc() {
	m.HTTPActiveRequests.Inc()
}

// ActiveRequestsDec decrements the in-flight request gauge.
func (m *Metrics) ActiveRequestsDec() {
	m.HTTPActiveRequests.Dec()
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(path, method string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

func result(success bool) string {
	if success {
		return constants.ResultSuccess
	}
	return constants.ResultFailure
}
