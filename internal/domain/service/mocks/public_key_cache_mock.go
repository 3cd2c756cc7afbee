package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/chatclaim/internal/domain/models"
)

// MockPublicKeyCache is a mock implementation of PublicKeyCache
type MockPublicKeyCache struct {
	mock.Mock
}

func (m *MockPublicKeyCache) GetPublicKey(ctx context.Context, cfg models.ServiceConfig, cred *models.DelegatedCredential) ([]byte, error) {
	args := m.Called(ctx, cfg, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPublicKeyCache) Invalidate() {
	m.Called()
}
