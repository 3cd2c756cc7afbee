// Package service provides application-level services that orchestrate the claim pipeline
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/chatclaim/internal/application/dto"
	"github.com/turtacn/chatclaim/internal/domain/models"
	domainService "github.com/turtacn/chatclaim/internal/domain/service"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/logger"
)

// Pipeline stages reported in TokenDetails.FailedStage
const (
	StageBuildingPayload     = "building_payload"
	StageResolvingCredential = "resolving_credential"
	StageFetchingKey         = "fetching_key"
	StageEncrypting          = "encrypting"
)

const tracerName = "github.com/turtacn/chatclaim/internal/application/service"

// ClaimTokenService defines the interface for issuing encrypted chat claim tokens
type ClaimTokenService interface {
	// Issue runs the full pipeline and returns the compact token, or a typed ClaimError
	Issue(ctx context.Context, opts *dto.TokenOptions) (string, *dto.TokenDetails, error)

	// CreateToken runs Issue and folds any failure into a TokenResult; it never returns an error
	CreateToken(ctx context.Context, opts *dto.TokenOptions) *dto.TokenResult

	// UpdateTenantID changes the tenant identifier used by subsequent calls
	UpdateTenantID(tenantID string)

	// UpdateApplicationID changes the application identifier used by subsequent calls
	UpdateApplicationID(applicationID string)

	// CurrentConfig returns the identifiers currently in use
	CurrentConfig() dto.ClaimConfigView

	// ClearCache drops the cached public key
	ClearCache()
}

// FactoryConfig holds the static settings of a ClaimTokenFactory
type FactoryConfig struct {
	Service          models.ServiceConfig
	TenantID         string
	ApplicationID    string
	DefaultExpiresIn int64
	IDStrategy       constants.IDStrategy
}

// claimTokenFactory is the concrete implementation of ClaimTokenService
type claimTokenFactory struct {
	service          models.ServiceConfig
	defaultExpiresIn int64
	idStrategy       constants.IDStrategy

	broker    domainService.CredentialBroker
	keyCache  domainService.PublicKeyCache
	encrypter domainService.ClaimEncrypter
	clock     domainService.Clock
	metrics   domainService.ClaimMetrics
	tracer    trace.Tracer
	logger    logger.Logger

	mu            sync.RWMutex
	tenantID      string
	applicationID string
}

// NewClaimTokenFactory creates a new instance of ClaimTokenService
func NewClaimTokenFactory(
	cfg FactoryConfig,
	broker domainService.CredentialBroker,
	keyCache domainService.PublicKeyCache,
	encrypter domainService.ClaimEncrypter,
	clock domainService.Clock,
	metrics domainService.ClaimMetrics,
	log logger.Logger,
) ClaimTokenService {
	if clock == nil {
		clock = domainService.SystemClock{}
	}
	if metrics == nil {
		metrics = domainService.NoopMetrics{}
	}
	if cfg.TenantID == "" {
		cfg.TenantID = constants.DefaultTenantID
	}
	if cfg.ApplicationID == "" {
		cfg.ApplicationID = constants.DefaultApplicationID
	}
	if cfg.DefaultExpiresIn <= 0 {
		cfg.DefaultExpiresIn = constants.DefaultClaimExpiresIn
	}
	if cfg.IDStrategy == "" {
		cfg.IDStrategy = constants.IDStrategyTimestamp
	}

	return &claimTokenFactory{
		service:          cfg.Service,
		defaultExpiresIn: cfg.DefaultExpiresIn,
		idStrategy:       cfg.IDStrategy,
		broker:           broker,
		keyCache:         keyCache,
		encrypter:        encrypter,
		clock:            clock,
		metrics:          metrics,
		tracer:           otel.Tracer(tracerName),
		logger:           log.WithComponent("ClaimTokenFactory"),
		tenantID:         cfg.TenantID,
		applicationID:    cfg.ApplicationID,
	}
}

// Issue implements the credential → key → encrypt pipeline
func (f *claimTokenFactory) Issue(ctx context.Context, opts *dto.TokenOptions) (string, *dto.TokenDetails, error) {
	start := f.clock.Now()
	tenantID, applicationID := f.identifiers()
	details := &dto.TokenDetails{
		TenantID:      tenantID,
		ApplicationID: applicationID,
		AuthMode:      f.service.AuthMode.String(),
	}

	ctx, span := f.tracer.Start(ctx, "ClaimTokenFactory.Issue", trace.WithAttributes(
		attribute.String("claim.tenant_id", tenantID),
		attribute.String("claim.application_id", applicationID),
		attribute.String("claim.auth_mode", details.AuthMode),
	))
	defer span.End()

	token, stage, err := f.run(ctx, tenantID, applicationID, opts)
	duration := f.clock.Now().Sub(start)

	if err != nil {
		details.FailedStage = stage
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		f.metrics.RecordTokenIssue(tenantID, false, duration, string(errors.KindOf(err)))
		f.logger.Warn(ctx, "claim token not issued",
			logger.String("stage", stage),
			logger.String("error_kind", string(errors.KindOf(err))),
			logger.String("tenant_id", tenantID),
			logger.String("application_id", applicationID),
			logger.Err(err),
		)
		return "", details, err
	}

	details.TokenLength = len(token)
	details.KeyID = f.service.KeyID
	span.SetAttributes(attribute.Int("claim.token_length", len(token)))
	f.metrics.RecordTokenIssue(tenantID, true, duration, "")
	f.logger.Info(ctx, "claim token issued",
		logger.String("tenant_id", tenantID),
		logger.String("application_id", applicationID),
		logger.Int("token_length", len(token)),
		logger.Duration("duration", duration),
	)
	return token, details, nil
}

// CreateToken wraps Issue in the uniform result shape
func (f *claimTokenFactory) CreateToken(ctx context.Context, opts *dto.TokenOptions) (result *dto.TokenResult) {
	defer func() {
		if r := recover(); r != nil {
			tenantID, applicationID := f.identifiers()
			f.logger.Error(ctx, "claim pipeline panicked", nil, logger.Any("panic", r))
			result = &dto.TokenResult{
				Success:   false,
				Error:     "unexpected failure while issuing claim token",
				ErrorKind: string(errors.KindInternal),
				Details: &dto.TokenDetails{
					TenantID:      tenantID,
					ApplicationID: applicationID,
					AuthMode:      f.service.AuthMode.String(),
				},
			}
		}
	}()

	token, details, err := f.Issue(ctx, opts)
	if err != nil {
		return &dto.TokenResult{
			Success:   false,
			Error:     err.Error(),
			ErrorKind: string(errors.KindOf(err)),
			Details:   details,
		}
	}
	return &dto.TokenResult{Success: true, Token: token, Details: details}
}

func (f *claimTokenFactory) run(ctx context.Context, tenantID, applicationID string, opts *dto.TokenOptions) (string, string, error) {
	payload, err := f.buildPayload(tenantID, applicationID, opts)
	if err != nil {
		return "", StageBuildingPayload, err
	}

	cred, err := f.broker.Resolve(ctx, f.service)
	if err != nil {
		return "", StageResolvingCredential, errors.WrapError(err, errors.KindCredential, "credential exchange failed")
	}

	raw, err := f.keyCache.GetPublicKey(ctx, f.service, cred)
	if err != nil {
		return "", StageFetchingKey, errors.WrapError(err, errors.KindKeyRetrieval, "public key retrieval failed")
	}

	token, _, err := f.encrypter.Encrypt(ctx, raw, payload)
	if err != nil {
		return "", StageEncrypting, errors.WrapError(err, errors.KindEncoding, "claim encryption failed")
	}
	if token == "" {
		return "", StageEncrypting, errors.ErrEncoding("encrypter returned an empty token")
	}
	return token, "", nil
}

func (f *claimTokenFactory) buildPayload(tenantID, applicationID string, opts *dto.TokenOptions) (*models.ClaimPayload, error) {
	expiresIn := f.defaultExpiresIn
	var extra map[string]interface{}
	if opts != nil {
		if opts.ExpiresIn < 0 {
			return nil, errors.ErrConfiguration("expires_in must not be negative").
				WithMetadata("field", "expires_in")
		}
		if opts.ExpiresIn > constants.MaxClaimExpiresIn {
			return nil, errors.ErrConfiguration(fmt.Sprintf("expires_in must be at most %d seconds", constants.MaxClaimExpiresIn)).
				WithMetadata("field", "expires_in")
		}
		if opts.ExpiresIn > 0 {
			expiresIn = opts.ExpiresIn
		}
		extra = opts.Extra
	}

	now := f.clock.Now()
	iat := now.Unix()
	subjectID, sessionID := f.newIdentifiers(now)

	return &models.ClaimPayload{
		TenantID:      tenantID,
		ApplicationID: applicationID,
		RequestType:   constants.RequestTypeChat,
		SubjectID:     constants.SubjectIDPrefix + subjectID,
		SessionID:     constants.SessionIDPrefix + sessionID,
		Timestamp:     now.UnixMilli(),
		IssuedAt:      iat,
		ExpiresAt:     iat + expiresIn,
		Purpose:       constants.ClaimPurpose,
		Extra:         extra,
	}, nil
}

func (f *claimTokenFactory) newIdentifiers(now time.Time) (string, string) {
	switch f.idStrategy {
	case constants.IDStrategyUUID:
		return uuid.NewString(), uuid.NewString()
	default:
		ms := strconv.FormatInt(now.UnixMilli(), 10)
		return ms, ms
	}
}

func (f *claimTokenFactory) identifiers() (string, string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tenantID, f.applicationID
}

// UpdateTenantID does not touch the key cache; the key is independent of tenant identity
func (f *claimTokenFactory) UpdateTenantID(tenantID string) {
	f.mu.Lock()
	f.tenantID = tenantID
	f.mu.Unlock()
	f.logger.Info(context.Background(), "tenant id updated", logger.String("tenant_id", tenantID))
}

// UpdateApplicationID does not touch the key cache
func (f *claimTokenFactory) UpdateApplicationID(applicationID string) {
	f.mu.Lock()
	f.applicationID = applicationID
	f.mu.Unlock()
	f.logger.Info(context.Background(), "application id updated", logger.String("application_id", applicationID))
}

// CurrentConfig returns the identifiers currently in use
func (f *claimTokenFactory) CurrentConfig() dto.ClaimConfigView {
	tenantID, applicationID := f.identifiers()
	return dto.ClaimConfigView{TenantID: tenantID, ApplicationID: applicationID}
}

// ClearCache drops the cached public key
func (f *claimTokenFactory) ClearCache() {
	f.keyCache.Invalidate()
	f.logger.Info(context.Background(), "public key cache cleared")
}
