// Package awsclient builds AWS SDK clients for the claim pipeline.
// Each stage authenticates differently, so every client is built from its own aws.Config.
package awsclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/turtacn/chatclaim/internal/domain/models"
)

// CognitoIdentityAPI is the subset of the Cognito Identity client used by the anonymous flow.
type CognitoIdentityAPI interface {
	GetId(ctx context.Context, params *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, params *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

// STSAPI is the subset of the STS client used by the delegated-role flow.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// KMSAPI is the subset of the KMS client used to read public keys.
type KMSAPI interface {
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
}

// Factory creates per-call AWS clients. Implementations must not share credentials between calls.
type Factory interface {
	CognitoIdentity(ctx context.Context, cfg models.ServiceConfig) (CognitoIdentityAPI, error)
	STS(ctx context.Context, cfg models.ServiceConfig, static *models.StaticCredentials) (STSAPI, error)
	KMS(ctx context.Context, cfg models.ServiceConfig, cred *models.DelegatedCredential) (KMSAPI, error)
}

// SDKFactory builds real SDK clients.
type SDKFactory struct {
	httpClient *http.Client
}

// NewSDKFactory returns a Factory backed by the AWS SDK. A nil httpClient selects a pooled cleanhttp client.
func NewSDKFactory(httpClient *http.Client) *SDKFactory {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	return &SDKFactory{httpClient: httpClient}
}

// CognitoIdentity returns an unsigned client; GetId and GetCredentialsForIdentity need no credentials.
func (f *SDKFactory) CognitoIdentity(ctx context.Context, cfg models.ServiceConfig) (CognitoIdentityAPI, error) {
	awsCfg, err := f.load(ctx, cfg, aws.AnonymousCredentials{})
	if err != nil {
		return nil, err
	}
	return cognitoidentity.NewFromConfig(awsCfg), nil
}

// STS returns a client signed with the long-lived static key pair.
func (f *SDKFactory) STS(ctx context.Context, cfg models.ServiceConfig, static *models.StaticCredentials) (STSAPI, error) {
	if static == nil {
		return nil, fmt.Errorf("static credentials are required for sts")
	}
	provider := credentials.NewStaticCredentialsProvider(static.AccessKeyID, static.SecretAccessKey.Value(), "")
	awsCfg, err := f.load(ctx, cfg, provider)
	if err != nil {
		return nil, err
	}
	return sts.NewFromConfig(awsCfg), nil
}

// KMS returns a client signed with the delegated session credentials.
func (f *SDKFactory) KMS(ctx context.Context, cfg models.ServiceConfig, cred *models.DelegatedCredential) (KMSAPI, error) {
	if cred == nil {
		return nil, fmt.Errorf("delegated credentials are required for kms")
	}
	provider := credentials.NewStaticCredentialsProvider(cred.AccessKeyID, cred.SecretAccessKey.Value(), cred.SessionToken.Value())
	awsCfg, err := f.load(ctx, cfg, provider)
	if err != nil {
		return nil, err
	}
	return kms.NewFromConfig(awsCfg), nil
}

func (f *SDKFactory) load(ctx context.Context, cfg models.ServiceConfig, provider aws.CredentialsProvider) (aws.Config, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(provider),
		config.WithHTTPClient(f.httpClient),
		config.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("cannot load the AWS configs: %w", err)
	}
	if cfg.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.EndpointURL)
	}
	return awsCfg, nil
}

var _ Factory = (*SDKFactory)(nil)
