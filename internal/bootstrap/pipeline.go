// Package bootstrap assembles the claim pipeline from configuration.
// The server and the CLI share it so both issue tokens the same way.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	appservice "github.com/turtacn/chatclaim/internal/application/service"
	"github.com/turtacn/chatclaim/internal/config"
	domainservice "github.com/turtacn/chatclaim/internal/domain/service"
	"github.com/turtacn/chatclaim/internal/infrastructure/awsclient"
	"github.com/turtacn/chatclaim/internal/infrastructure/chatapi"
	"github.com/turtacn/chatclaim/internal/infrastructure/credentials"
	"github.com/turtacn/chatclaim/internal/infrastructure/crypto"
	"github.com/turtacn/chatclaim/internal/infrastructure/kms"
	"github.com/turtacn/chatclaim/pkg/logger"
)

// Pipeline holds the wired claim components.
type Pipeline struct {
	Tokens   appservice.ClaimTokenService
	KeyCache *kms.PublicKeyCache
	Chat     *chatapi.Client
}

// Options overrides the collaborators NewPipeline would otherwise create.
// HTTPClient carries both AWS and chat traffic.
type Options struct {
	Metrics    domainservice.ClaimMetrics
	Clock      domainservice.Clock
	AWSClients awsclient.Factory
	HTTPClient *http.Client
}

// NewPipeline wires broker → key cache → codec into a token factory, and the chat client on top.
// Nothing here talks to AWS; configuration gaps surface when a token is first requested.
func NewPipeline(cfg *config.Config, log logger.Logger, opts Options) *Pipeline {
	if opts.Metrics == nil {
		opts.Metrics = domainservice.NoopMetrics{}
	}
	if opts.Clock == nil {
		opts.Clock = domainservice.SystemClock{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = cleanhttp.DefaultPooledClient()
	}
	if opts.AWSClients == nil {
		opts.AWSClients = awsclient.NewSDKFactory(opts.HTTPClient)
	}

	broker := credentials.NewBroker(opts.AWSClients, opts.Metrics, opts.Clock, log)
	keyCache := kms.NewPublicKeyCache(opts.AWSClients, log,
		kms.WithClock(opts.Clock),
		kms.WithMetrics(opts.Metrics),
	)
	codec := crypto.NewKeyPairCodec(log)

	tokens := appservice.NewClaimTokenFactory(
		appservice.FactoryConfig{
			Service:          cfg.ServiceConfig(),
			TenantID:         cfg.Claims.TenantID,
			ApplicationID:    cfg.Claims.ApplicationID,
			DefaultExpiresIn: cfg.Claims.ExpiresIn,
			IDStrategy:       cfg.IDStrategy(),
		},
		broker, keyCache, codec, opts.Clock, opts.Metrics, log,
	)

	// Chat traffic shares the transport but carries its own timeout.
	chatHTTP := new(http.Client)
	*chatHTTP = *opts.HTTPClient
	if cfg.Chat.TimeoutSeconds > 0 {
		chatHTTP.Timeout = time.Duration(cfg.Chat.TimeoutSeconds) * time.Second
	}
	chat := chatapi.NewClient(
		chatapi.ResolveBaseURL(cfg.Chat.ChatAPIURL, cfg.Chat.APIURL),
		tokens, log,
		chatapi.WithHTTPClient(chatHTTP),
		chatapi.WithAuthToken(cfg.Chat.AuthToken),
		chatapi.WithMetrics(opts.Metrics),
	)

	return &Pipeline{Tokens: tokens, KeyCache: keyCache, Chat: chat}
}

// ReadinessCheck reports whether the configuration can issue tokens for the selected mode.
func ReadinessCheck(cfg *config.Config) func(ctx context.Context) error {
	return func(context.Context) error {
		return cfg.PipelineReady()
	}
}
