package service

import (
	"context"
	"time"

	"github.com/turtacn/chatclaim/internal/domain/models"
)

//go:generate mockery --name CredentialBroker --output mocks --outpkg mocks
// CredentialBroker turns the configured auth mode into short-lived delegated credentials.
// CredentialBroker 根据配置的认证模式换取短期委托凭证。
type CredentialBroker interface {
	// Resolve performs the identity or role-assumption exchange selected by cfg.AuthMode.
	// Every call talks to the remote service; results are never cached.
	// Resolve 按 cfg.AuthMode 执行身份或角色交换，每次调用都会访问远程服务，结果不缓存。
	Resolve(ctx context.Context, cfg models.ServiceConfig) (*models.DelegatedCredential, error)
}

//go:generate mockery --name PublicKeyCache --output mocks --outpkg mocks
// PublicKeyCache serves the raw DER public key of the configured key-management key.
// PublicKeyCache 提供配置的密钥管理密钥的原始 DER 公钥。
type PublicKeyCache interface {
	// GetPublicKey returns the cached key when it is fresh for cfg.KeyID, otherwise fetches it with cred.
	// GetPublicKey 在缓存新鲜时直接返回，否则使用 cred 重新获取。
	GetPublicKey(ctx context.Context, cfg models.ServiceConfig, cred *models.DelegatedCredential) ([]byte, error)

	// Invalidate drops the cached entry so the next call fetches again.
	// Invalidate 清除缓存条目，下一次调用将重新获取。
	Invalidate()
}

// EncryptionDetails describes a token produced by a ClaimEncrypter.
type EncryptionDetails struct {
	Algorithm   string
	Encryption  string
	KeyBits     int
	PayloadSize int
	TokenLength int
}

//go:generate mockery --name ClaimEncrypter --output mocks --outpkg mocks
// ClaimEncrypter seals a claim payload for a recipient public key.
// ClaimEncrypter 使用接收方公钥加密声明载荷。
type ClaimEncrypter interface {
	// Encrypt imports the DER public key and returns a compact JWE of payload's JSON encoding.
	// Encrypt 导入 DER 公钥并返回载荷 JSON 编码的紧凑 JWE。
	Encrypt(ctx context.Context, derPublicKey []byte, payload interface{}) (string, *EncryptionDetails, error)
}

// Clock abstracts wall time so expiry and cache freshness can be tested.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
