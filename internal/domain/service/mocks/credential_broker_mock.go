package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/chatclaim/internal/domain/models"
)

// MockCredentialBroker is a mock implementation of CredentialBroker
type MockCredentialBroker struct {
	mock.Mock
}

func (m *MockCredentialBroker) Resolve(ctx context.Context, cfg models.ServiceConfig) (*models.DelegatedCredential, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DelegatedCredential), args.Error(1)
}
