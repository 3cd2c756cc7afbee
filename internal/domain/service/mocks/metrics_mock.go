package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockClaimMetrics is a mock implementation of ClaimMetrics
type MockClaimMetrics struct {
	mock.Mock
}

func (m *MockClaimMetrics) RecordCredentialExchange(authMode string, success bool, duration time.Duration) {
	m.Called(authMode, success, duration)
}

func (m *MockClaimMetrics) RecordCacheAccess(cacheType string, hit bool) {
	m.Called(cacheType, hit)
}

func (m *MockClaimMetrics) RecordKeyFetch(duration time.Duration, err error) {
	m.Called(duration, err)
}

func (m *MockClaimMetrics) RecordTokenIssue(tenantID string, success bool, duration time.Duration, errorKind string) {
	m.Called(tenantID, success, duration, errorKind)
}

func (m *MockClaimMetrics) RecordChatRequest(operation string, statusCode int, withToken bool, duration time.Duration) {
	m.Called(operation, statusCode, withToken, duration)
}
