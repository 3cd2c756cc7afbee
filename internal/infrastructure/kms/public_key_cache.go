package kms

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/chatclaim/internal/domain/models"
	"github.com/turtacn/chatclaim/internal/domain/service"
	"github.com/turtacn/chatclaim/internal/infrastructure/awsclient"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/logger"
)

const cacheTypePublicKey = "kms_public_key"

// PublicKeyCache holds a single KMS public key in memory for a fixed TTL.
// A failed refetch leaves the previous entry in place but it is never served once stale.
// PublicKeyCache 在内存中保存单个 KMS 公钥，过期时间固定。
// 重新获取失败时保留旧条目，但过期后不会再返回。
type PublicKeyCache struct {
	clients awsclient.Factory
	clock   service.Clock
	metrics service.ClaimMetrics
	logger  logger.Logger
	ttl     time.Duration

	mu    sync.Mutex
	entry *models.CachedPublicKey
	sf    singleflight.Group
}

// Option configures a PublicKeyCache.
type Option func(*PublicKeyCache)

// WithTTL overrides the default one-hour lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *PublicKeyCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the clock used for freshness checks.
func WithClock(clock service.Clock) Option {
	return func(c *PublicKeyCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMetrics records hits, misses and fetch latency.
func WithMetrics(metrics service.ClaimMetrics) Option {
	return func(c *PublicKeyCache) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// NewPublicKeyCache creates an empty cache.
func NewPublicKeyCache(clients awsclient.Factory, log logger.Logger, opts ...Option) *PublicKeyCache {
	c := &PublicKeyCache{
		clients: clients,
		clock:   service.SystemClock{},
		metrics: service.NoopMetrics{},
		logger:  log.WithComponent("PublicKeyCache"),
		ttl:     constants.PublicKeyCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPublicKey returns the DER public key for cfg.KeyID.
func (c *PublicKeyCache) GetPublicKey(ctx context.Context, cfg models.ServiceConfig, cred *models.DelegatedCredential) ([]byte, error) {
	if cfg.KeyID == "" {
		return nil, errors.ErrMissingConfig("aws.kms_key_id")
	}

	if raw, ok := c.lookup(cfg.KeyID); ok {
		c.metrics.RecordCacheAccess(cacheTypePublicKey, true)
		c.logger.Debug(ctx, "public key served from cache", logger.String("key_id", cfg.KeyID))
		return raw, nil
	}
	c.metrics.RecordCacheAccess(cacheTypePublicKey, false)

	if cred == nil {
		return nil, errors.ErrKeyRetrieval("no delegated credential for public key fetch")
	}

	// Concurrent misses for one key share a single upstream call. The shared fetch
	// outlives any one caller; each caller stops waiting when its own ctx ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(cfg.KeyID, func() (interface{}, error) {
		return c.fetch(fetchCtx, cfg, cred)
	})

	select {
	case <-ctx.Done():
		return nil, errors.ErrKeyRetrieval("public key fetch abandoned").WithCause(ctx.Err()).
			WithMetadata("key_id", cfg.KeyID)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug(ctx, "public key fetch shared with concurrent caller", logger.String("key_id", cfg.KeyID))
		}
		return clone(res.Val.([]byte)), nil
	}
}

// Invalidate drops the cached entry.
func (c *PublicKeyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

// Entry returns a copy of the current entry, fresh or not.
func (c *PublicKeyCache) Entry() *models.CachedPublicKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return nil
	}
	cp := *c.entry
	cp.RawBytes = clone(c.entry.RawBytes)
	return &cp
}

func (c *PublicKeyCache) lookup(keyID string) ([]byte, bool) {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.entry.FreshAt(keyID, now, c.ttl) {
		return nil, false
	}
	return clone(c.entry.RawBytes), true
}

func (c *PublicKeyCache) fetch(ctx context.Context, cfg models.ServiceConfig, cred *models.DelegatedCredential) ([]byte, error) {
	start := c.clock.Now()
	raw, err := c.getFromKMS(ctx, cfg, cred)
	c.metrics.RecordKeyFetch(c.clock.Now().Sub(start), err)
	if err != nil {
		c.logger.Error(ctx, "public key fetch failed", err, logger.String("key_id", cfg.KeyID))
		return nil, err
	}

	c.mu.Lock()
	c.entry = &models.CachedPublicKey{KeyID: cfg.KeyID, RawBytes: raw, FetchedAt: start}
	c.mu.Unlock()

	c.logger.Info(ctx, "public key fetched",
		logger.String("key_id", cfg.KeyID),
		logger.Int("key_length", len(raw)),
	)
	return raw, nil
}

func (c *PublicKeyCache) getFromKMS(ctx context.Context, cfg models.ServiceConfig, cred *models.DelegatedCredential) ([]byte, error) {
	client, err := c.clients.KMS(ctx, cfg, cred)
	if err != nil {
		return nil, errors.ErrKeyRetrieval("failed to build kms client").WithCause(err)
	}

	out, err := client.GetPublicKey(ctx, &kms.GetPublicKeyInput{KeyId: aws.String(cfg.KeyID)})
	if err != nil {
		return nil, errors.ErrKeyRetrieval("kms GetPublicKey failed").WithCause(err).
			WithMetadata("key_id", cfg.KeyID)
	}
	if len(out.PublicKey) == 0 {
		return nil, errors.ErrKeyRetrieval("kms returned an empty public key").
			WithMetadata("key_id", cfg.KeyID)
	}
	if out.KeyUsage != "" && string(out.KeyUsage) != constants.KMSKeyUsageEncryptDecrypt {
		return nil, errors.ErrKeyRetrieval("kms key is not an encryption key").
			WithMetadata("key_id", cfg.KeyID).
			WithMetadata("key_usage", string(out.KeyUsage))
	}
	return clone(out.PublicKey), nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ service.PublicKeyCache = (*PublicKeyCache)(nil)
