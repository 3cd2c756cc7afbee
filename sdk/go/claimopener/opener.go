// Package claimopener is the receiving side of chat claim tokens.
// A chat backend holding the KMS key pair's private half uses it to decrypt the
// X-JWE-Token header and check the claim before trusting the tenant and application ids.
//
// It serves receiver backends and the in-memory test backend only. The client token
// pipeline never imports it and does not decrypt or verify its own tokens.
package claimopener

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose is the purpose tag every chat claim carries.
const Purpose = "chat-api-authentication"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpired      = errors.New("claim expired")
	ErrNotYetValid  = errors.New("claim issued in the future")
	ErrPurpose      = errors.New("unexpected claim purpose")
	ErrMissingClaim = errors.New("required claim missing")
)

// Claim is the decrypted claim payload.
type Claim struct {
	TenantID      string `json:"client_id"`
	ApplicationID string `json:"app_id"`
	RequestType   string `json:"request_type"`
	UserID        string `json:"userId"`
	SessionID     string `json:"sessionId"`
	Timestamp     int64  `json:"timestamp"`
	IssuedAt      int64  `json:"iat"`
	ExpiresAt     int64  `json:"exp"`
	Purpose       string `json:"purpose"`

	// Raw holds every field of the payload, including extra claims.
	Raw map[string]interface{} `json:"-"`
}

// Opener decrypts and checks claim tokens.
type Opener struct {
	privateKey *rsa.PrivateKey
	now        func() time.Time
	leeway     time.Duration
}

// Option configures an Opener.
type Option func(*Opener)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Opener) { o.now = now }
}

// WithLeeway tolerates clock skew between issuer and receiver.
func WithLeeway(d time.Duration) Option {
	return func(o *Opener) { o.leeway = d }
}

// NewOpener creates an Opener for the given RSA private key.
func NewOpener(privateKey *rsa.PrivateKey, opts ...Option) *Opener {
	o := &Opener{privateKey: privateKey, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewOpenerFromPEM parses a PKCS#1 or PKCS#8 PEM private key.
func NewOpenerFromPEM(pemBytes []byte, opts ...Option) (*Opener, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return NewOpener(key, opts...), nil
}

// Open decrypts a compact RSA-OAEP-256 / A256GCM token and validates the claim.
func (o *Opener) Open(token string) (*Claim, error) {
	jwe, err := jose.ParseEncrypted(token,
		[]jose.KeyAlgorithm{jose.RSA_OAEP_256},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	plaintext, err := jwe.Decrypt(o.privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decryption failed", ErrInvalidToken)
	}

	var claim Claim
	if err := json.Unmarshal(plaintext, &claim); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := json.Unmarshal(plaintext, &claim.Raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if err := o.validate(&claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (o *Opener) validate(c *Claim) error {
	if c.TenantID == "" {
		return fmt.Errorf("%w: client_id", ErrMissingClaim)
	}
	if c.ApplicationID == "" {
		return fmt.Errorf("%w: app_id", ErrMissingClaim)
	}
	if c.ExpiresAt == 0 {
		return fmt.Errorf("%w: exp", ErrMissingClaim)
	}
	if c.Purpose != Purpose {
		return fmt.Errorf("%w: %q", ErrPurpose, c.Purpose)
	}

	now := o.now()
	if now.After(time.Unix(c.ExpiresAt, 0).Add(o.leeway)) {
		return ErrExpired
	}
	if c.IssuedAt != 0 && time.Unix(c.IssuedAt, 0).After(now.Add(o.leeway)) {
		return ErrNotYetValid
	}
	return nil
}
