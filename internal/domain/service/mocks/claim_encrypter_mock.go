package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/chatclaim/internal/domain/service"
)

// MockClaimEncrypter is a mock implementation of ClaimEncrypter
type MockClaimEncrypter struct {
	mock.Mock
}

func (m *MockClaimEncrypter) Encrypt(ctx context.Context, derPublicKey []byte, payload interface{}) (string, *service.EncryptionDetails, error) {
	args := m.Called(ctx, derPublicKey, payload)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*service.EncryptionDetails), args.Error(2)
}
