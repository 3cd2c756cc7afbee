// Package monitoring provides adapters to connect the domain's metrics interface with a concrete implementation like Prometheus.
package monitoring

import (
	"time"

	"github.com/turtacn/chatclaim/internal/domain/service"
)

// MetricsAdapter implements the domain's service.ClaimMetrics interface, sending metrics to a Prometheus backend.
// MetricsAdapter 实现了域的 service.ClaimMetrics 接口，将指标发送到 Prometheus 后端。
type MetricsAdapter struct {
	metrics *Metrics
}

var _ service.ClaimMetrics = (*MetricsAdapter)(nil)

// NewMetricsAdapter creates a new adapter that wraps a concrete Prometheus Metrics object.
// NewMetricsAdapter 创建一个包装具体 Prometheus Metrics 对象的新适配器。
func NewMetricsAdapter(metrics *Metrics) service.ClaimMetrics {
	return &MetricsAdapter{metrics: metrics}
}

// RecordCredentialExchange delegates the call to the underlying Prometheus Metrics object.
func (a *MetricsAdapter) RecordCredentialExchange(authMode string, success bool, duration time.Duration) {
	a.metrics.RecordCredentialExchange(authMode, success, duration)
}

// RecordCacheAccess delegates the call to the underlying Prometheus Metrics object.
func (a *MetricsAdapter) RecordCacheAccess(cacheType string, hit bool) {
	a.metrics.RecordCacheAccess(cacheType, hit)
}

// RecordKeyFetch delegates the call to the underlying Prometheus Metrics object.
func (a *MetricsAdapter) RecordKeyFetch(duration time.Duration, err error) {
	a.metrics.RecordKeyFetch(duration, err)
}

// RecordTokenIssue delegates the call to the underlying Prometheus Metrics object.
// RecordTokenIssue 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordTokenIssue(tenantID string, success bool, duration time.Duration, errorKind string) {
	a.metrics.RecordTokenIssue(tenantID, success, duration, errorKind)
}

// RecordChatRequest delegates the call to the underlying Prometheus Metrics object.
func (a *MetricsAdapter) RecordChatRequest(operation string, statusCode int, withToken bool, duration time.Duration) {
	a.metrics.RecordChatRequest(operation, statusCode, withToken, duration)
}
