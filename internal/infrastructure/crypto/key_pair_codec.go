// Package crypto converts KMS public keys and seals claim payloads as compact JWE tokens.
package crypto

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/chatclaim/internal/domain/service"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/logger"
)

const (
	pemHeader     = "-----BEGIN PUBLIC KEY-----"
	pemFooter     = "-----END PUBLIC KEY-----"
	pemLineLength = 64
)

// KeyPairCodec implements service.ClaimEncrypter with RSA-OAEP-256 key wrapping and A256GCM content encryption.
// KeyPairCodec 使用 RSA-OAEP-256 密钥封装和 A256GCM 内容加密实现 service.ClaimEncrypter。
type KeyPairCodec struct {
	minKeyBits int
	logger     logger.Logger
}

// NewKeyPairCodec creates a codec that rejects RSA keys shorter than 2048 bits.
func NewKeyPairCodec(log logger.Logger) *KeyPairCodec {
	return &KeyPairCodec{
		minKeyBits: constants.MinRSAKeyBits,
		logger:     log.WithComponent("KeyPairCodec"),
	}
}

// ConvertToPEM wraps DER SubjectPublicKeyInfo bytes in a PEM "PUBLIC KEY" block with 64-character lines.
func ConvertToPEM(der []byte) string {
	body := base64.StdEncoding.EncodeToString(der)

	var b strings.Builder
	b.WriteString(pemHeader)
	b.WriteByte('\n')
	for len(body) > pemLineLength {
		b.WriteString(body[:pemLineLength])
		b.WriteByte('\n')
		body = body[pemLineLength:]
	}
	if body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	b.WriteString(pemFooter)
	return b.String()
}

// ImportPublicKey parses a PEM public key and checks it is usable for key wrapping.
func (c *KeyPairCodec) ImportPublicKey(pemData string) (*rsa.PublicKey, error) {
	pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemData))
	if err != nil {
		return nil, errors.ErrEncoding("public key is not a valid RSA key").WithCause(err)
	}
	if bits := pub.N.BitLen(); bits < c.minKeyBits {
		return nil, errors.ErrEncoding(fmt.Sprintf("RSA key is %d bits, need at least %d", bits, c.minKeyBits)).
			WithMetadata("key_bits", bits)
	}
	return pub, nil
}

// Encrypt seals payload's JSON encoding for the holder of the private half of derPublicKey.
// Each call draws a fresh content key and IV, so identical inputs never yield identical tokens.
func (c *KeyPairCodec) Encrypt(ctx context.Context, derPublicKey []byte, payload interface{}) (string, *service.EncryptionDetails, error) {
	if len(derPublicKey) == 0 {
		return "", nil, errors.ErrEncoding("public key is empty")
	}

	pub, err := c.ImportPublicKey(ConvertToPEM(derPublicKey))
	if err != nil {
		c.logger.Error(ctx, "public key import failed", err)
		return "", nil, err
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", nil, errors.ErrEncoding("payload is not JSON serialisable").WithCause(err)
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.RSA_OAEP_256, Key: pub},
		nil,
	)
	if err != nil {
		return "", nil, errors.ErrEncoding("failed to create encrypter").WithCause(err)
	}

	object, err := encrypter.Encrypt(plaintext)
	if err != nil {
		return "", nil, errors.ErrEncoding("encryption failed").WithCause(err)
	}

	token, err := object.CompactSerialize()
	if err != nil {
		return "", nil, errors.ErrEncoding("compact serialisation failed").WithCause(err)
	}

	details := &service.EncryptionDetails{
		Algorithm:   constants.KeyWrapAlgorithm,
		Encryption:  constants.ContentEncryptionAlgorithm,
		KeyBits:     pub.N.BitLen(),
		PayloadSize: len(plaintext),
		TokenLength: len(token),
	}
	c.logger.Debug(ctx, "claim encrypted",
		logger.Int("payload_length", details.PayloadSize),
		logger.Int("token_length", details.TokenLength),
	)
	return token, details, nil
}

var _ service.ClaimEncrypter = (*KeyPairCodec)(nil)
