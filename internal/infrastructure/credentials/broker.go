// Package credentials exchanges the configured auth mode for short-lived AWS credentials.
package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentity/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"

	"github.com/turtacn/chatclaim/internal/domain/models"
	"github.com/turtacn/chatclaim/internal/domain/service"
	"github.com/turtacn/chatclaim/internal/infrastructure/awsclient"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/logger"
)

// Broker implements service.CredentialBroker on top of Cognito Identity and STS.
// Broker 基于 Cognito Identity 和 STS 实现 service.CredentialBroker。
type Broker struct {
	clients awsclient.Factory
	metrics service.ClaimMetrics
	clock   service.Clock
	logger  logger.Logger
}

// NewBroker creates a new Broker. Nil metrics and clock fall back to no-op and wall time.
func NewBroker(clients awsclient.Factory, metrics service.ClaimMetrics, clock service.Clock, log logger.Logger) *Broker {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	if clock == nil {
		clock = service.SystemClock{}
	}
	return &Broker{
		clients: clients,
		metrics: metrics,
		clock:   clock,
		logger:  log.WithComponent("CredentialBroker"),
	}
}

// Resolve performs exactly one exchange per call; nothing is cached here.
func (b *Broker) Resolve(ctx context.Context, cfg models.ServiceConfig) (*models.DelegatedCredential, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	start := b.clock.Now()
	var (
		cred *models.DelegatedCredential
		err  error
	)
	switch cfg.AuthMode {
	case models.AuthModeAnonymous:
		cred, err = b.resolveAnonymous(ctx, cfg)
	case models.AuthModeDelegatedRole:
		cred, err = b.resolveDelegatedRole(ctx, cfg)
	}
	b.metrics.RecordCredentialExchange(cfg.AuthMode.String(), err == nil, b.clock.Now().Sub(start))

	if err != nil {
		b.logger.Error(ctx, "credential exchange failed", err, logger.String("auth_mode", cfg.AuthMode.String()))
		return nil, err
	}

	b.logger.Debug(ctx, "credential exchange succeeded",
		logger.String("auth_mode", cfg.AuthMode.String()),
		logger.Time("expires_at", cred.ExpiresAt),
	)
	return cred, nil
}

func (b *Broker) resolveAnonymous(ctx context.Context, cfg models.ServiceConfig) (*models.DelegatedCredential, error) {
	client, err := b.clients.CognitoIdentity(ctx, cfg)
	if err != nil {
		return nil, errors.ErrCredential("failed to build cognito identity client").WithCause(err)
	}

	idOut, err := client.GetId(ctx, &cognitoidentity.GetIdInput{
		IdentityPoolId: aws.String(cfg.IdentityPoolID),
	})
	if err != nil {
		return nil, errors.ErrCredential("cognito GetId failed").WithCause(err)
	}
	identityID := aws.ToString(idOut.IdentityId)
	if identityID == "" {
		return nil, errors.ErrCredential("cognito GetId returned no identity id")
	}

	credOut, err := client.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: aws.String(identityID),
	})
	if err != nil {
		return nil, errors.ErrCredential("cognito GetCredentialsForIdentity failed").WithCause(err)
	}
	return fromCognito(credOut.Credentials)
}

func (b *Broker) resolveDelegatedRole(ctx context.Context, cfg models.ServiceConfig) (*models.DelegatedCredential, error) {
	client, err := b.clients.STS(ctx, cfg, cfg.Static)
	if err != nil {
		return nil, errors.ErrCredential("failed to build sts client").WithCause(err)
	}

	out, err := client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(cfg.Static.RoleARN),
		RoleSessionName: aws.String(constants.AssumeRoleSessionName),
		DurationSeconds: aws.Int32(constants.AssumeRoleDurationSeconds),
	})
	if err != nil {
		return nil, errors.ErrCredential("sts AssumeRole failed").WithCause(err).
			WithMetadata("role_arn", cfg.Static.RoleARN)
	}
	return fromSTS(out.Credentials)
}

func fromCognito(c *cognitotypes.Credentials) (*models.DelegatedCredential, error) {
	if c == nil || aws.ToString(c.AccessKeyId) == "" || aws.ToString(c.SecretKey) == "" {
		return nil, errors.ErrCredential("cognito returned no credentials")
	}
	return &models.DelegatedCredential{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: models.Secret(aws.ToString(c.SecretKey)),
		SessionToken:    models.Secret(aws.ToString(c.SessionToken)),
		ExpiresAt:       toTime(c.Expiration),
	}, nil
}

func fromSTS(c *ststypes.Credentials) (*models.DelegatedCredential, error) {
	if c == nil || aws.ToString(c.AccessKeyId) == "" || aws.ToString(c.SecretAccessKey) == "" {
		return nil, errors.ErrCredential("sts returned no credentials")
	}
	return &models.DelegatedCredential{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: models.Secret(aws.ToString(c.SecretAccessKey)),
		SessionToken:    models.Secret(aws.ToString(c.SessionToken)),
		ExpiresAt:       toTime(c.Expiration),
	}, nil
}

func toTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// validate rejects incomplete configuration before any network call is made.
func validate(cfg models.ServiceConfig) error {
	if cfg.Region == "" {
		return errors.ErrMissingConfig("aws.region")
	}
	switch cfg.AuthMode {
	case models.AuthModeAnonymous:
		if cfg.IdentityPoolID == "" {
			return errors.ErrMissingConfig("aws.identity_pool_id")
		}
	case models.AuthModeDelegatedRole:
		if cfg.Static == nil {
			return errors.ErrMissingConfig("aws.access_key_id")
		}
		if cfg.Static.AccessKeyID == "" {
			return errors.ErrMissingConfig("aws.access_key_id")
		}
		if cfg.Static.SecretAccessKey.IsZero() {
			return errors.ErrMissingConfig("aws.secret_access_key")
		}
		if cfg.Static.RoleARN == "" {
			return errors.ErrMissingConfig("aws.role_arn")
		}
	default:
		return errors.ErrConfiguration(fmt.Sprintf("unsupported auth mode %s", cfg.AuthMode)).
			WithMetadata("field", "aws.auth_mode")
	}
	return nil
}

var _ service.CredentialBroker = (*Broker)(nil)
