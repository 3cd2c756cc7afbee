// Package service defines the interfaces for domain services.
package service

import (
	"time"
)

// ClaimMetrics defines the interface for collecting claim pipeline metrics.
// This abstraction allows the pipeline to remain independent of the specific monitoring implementation (e.g., Prometheus).
// ClaimMetrics 定义了收集声明管道指标的接口。
// 这种抽象使管道能够独立于具体的监控实现（例如 Prometheus）。
type ClaimMetrics interface {
	// RecordCredentialExchange records one identity or role-assumption exchange.
	// RecordCredentialExchange 记录一次身份或角色交换。
	RecordCredentialExchange(authMode string, success bool, duration time.Duration)

	// RecordCacheAccess records a cache hit or miss.
	// RecordCacheAccess 记录缓存命中或未命中。
	RecordCacheAccess(cacheType string, hit bool)

	// RecordKeyFetch records the latency and error status of a public key fetch.
	// RecordKeyFetch 记录公钥获取的延迟和错误状态。
	RecordKeyFetch(duration time.Duration, err error)

	// RecordTokenIssue records one claim token attempt, labelled by the failing error kind.
	// RecordTokenIssue 记录一次声明令牌签发，并按失败的错误类型打标签。
	RecordTokenIssue(tenantID string, success bool, duration time.Duration, errorKind string)

	// RecordChatRequest records one call to the chat backend.
	// RecordChatRequest 记录一次对聊天后端的调用。
	RecordChatRequest(operation string, statusCode int, withToken bool, duration time.Duration)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordCredentialExchange(string, bool, time.Duration) {}

func (NoopMetrics) RecordCacheAccess(string, bool) {}

func (NoopMetrics) RecordKeyFetch(time.Duration, error) {}

func (NoopMetrics) RecordTokenIssue(string, bool, time.Duration, string) {}

func (NoopMetrics) RecordChatRequest(string, int, bool, time.Duration) {}
