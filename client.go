// Package gatewayclient signs chat requests for a private API Gateway that
// fronts Amazon Bedrock, sends them, and returns typed responses.
//
// Usage:
//
//	client, err := gatewayclient.New(ctx, gatewayclient.Options{
//		GatewayURL: "https://abc123.execute-api.ap-southeast-2.amazonaws.com/prod/invoke",
//		Region:     "ap-southeast-2",
//	})
//	if err != nil {
//		return err
//	}
//	resp, err := client.Chat(ctx, "Tell me about koalas", gatewayclient.WithModel("haiku-4.5"))
package gatewayclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/builder"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/config"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/cost"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/credentials"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/metrics"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/provider/bedrock"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/signer"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/telemetry"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/transport"
)

// RequestIDHeader carries the client correlation id on every gateway call.
const RequestIDHeader = "X-Request-ID"

type IdentitySource interface {
	Identity(ctx context.Context) (Identity, error)
}

// Options configures a Client. Explicit gateway fields take precedence over
// the environment, which takes precedence over the config file.
type Options struct {
	GatewayURL string
	APIID      string
	Region     string
	Profile    string
	ModelMap   map[string]string
	Verbose    bool

	// ConfigPath overrides the config file location.
	ConfigPath string
	// Env replaces os.LookupEnv as the environment source.
	Env LookupFunc

	// Credentials replaces the AWS default credential chain.
	Credentials CredentialProvider
	// CredentialsSecret reads signing keys from this Secrets Manager secret.
	CredentialsSecret string
	Identity          IdentitySource

	HTTPClient HTTPDoer
	Timeout    time.Duration
	Logger     *slog.Logger
	// Clock fixes the signing time; tests only.
	Clock func() time.Time
}

type Client struct {
	cfg       *GatewayConfig
	creds     credentials.Provider
	identity  IdentitySource
	signer    *signer.Signer
	transport *transport.Transport
	direct    *bedrock.Provider
	costs     *cost.Calculator
	logger    *slog.Logger
}

// New resolves configuration from opts, the environment and the config file,
// then builds a client.
func New(ctx context.Context, opts Options) (*Client, error) {
	lookup := opts.Env
	if lookup == nil {
		lookup = os.LookupEnv
	}
	settings := config.LoadFrom(lookup)

	path := opts.ConfigPath
	if path == "" {
		path = settings.ConfigPath
	}
	file, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	explicit := config.Partial{
		GatewayURL: opts.GatewayURL,
		APIID:      opts.APIID,
		Region:     opts.Region,
		Profile:    opts.Profile,
		ModelMap:   opts.ModelMap,
		Verbose:    opts.Verbose,
	}
	cfg, err := config.Resolve(explicit, config.FromEnv(lookup), file)
	if err != nil {
		return nil, err
	}

	if opts.Timeout == 0 {
		opts.Timeout = settings.Timeout
	}
	if opts.CredentialsSecret == "" {
		opts.CredentialsSecret = settings.CredentialsSecret
	}
	return NewWithConfig(ctx, cfg, opts)
}

// NewWithConfig builds a client for an already resolved configuration. Only
// the credential, transport and logging fields of opts are used.
func NewWithConfig(ctx context.Context, cfg *GatewayConfig, opts Options) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil gateway config", domain.ErrConfiguration)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	resolved := *cfg
	resolved.ModelMap = maps.Clone(cfg.ModelMap)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	creds, awsCfg, err := credentialChain(ctx, &resolved, opts)
	if err != nil {
		return nil, err
	}

	identity := opts.Identity
	if identity == nil {
		identity = credentials.NewIdentityChecker(awsCfg)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = transport.NewHTTPClientWithTimeout(opts.Timeout)
	}

	var signerOpts []signer.Option
	if opts.Clock != nil {
		signerOpts = append(signerOpts, signer.WithClock(opts.Clock))
	}

	if resolved.Verbose {
		logger.Info("gateway client configured", "gateway", resolved.GatewayURL, "region", resolved.Region)
	}

	return &Client{
		cfg:       &resolved,
		creds:     creds,
		identity:  identity,
		signer:    signer.New(signerOpts...),
		transport: transport.New(httpClient, transport.WithLogger(logger)),
		direct:    bedrock.NewWithConfig(awsCfg),
		costs:     cost.NewCalculator(),
		logger:    logger,
	}, nil
}

func credentialChain(ctx context.Context, cfg *GatewayConfig, opts Options) (credentials.Provider, aws.Config, error) {
	if opts.Credentials != nil {
		return opts.Credentials, aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.AsAWS(opts.Credentials),
		}, nil
	}

	chain, awsCfg, err := credentials.NewDefaultChain(ctx, cfg.Region, cfg.Profile)
	if err != nil {
		return nil, aws.Config{}, err
	}

	if opts.CredentialsSecret == "" {
		return chain, awsCfg, nil
	}

	secret := credentials.NewSecretsManagerProviderFromConfig(awsCfg, opts.CredentialsSecret)
	signing := awsCfg.Copy()
	signing.Credentials = credentials.AsAWS(secret)
	return secret, signing, nil
}

// Config returns the resolved configuration. Callers must not modify it.
func (c *Client) Config() *GatewayConfig {
	return c.cfg
}

// Models lists the configured model aliases.
func (c *Client) Models() []string {
	return c.cfg.Aliases()
}

// EstimateCost prices resp at on-demand list rates. It reports false for
// models without known pricing.
func (c *Client) EstimateCost(resp *ChatResponse) (float64, bool) {
	if resp == nil {
		return 0, false
	}
	return c.costs.Calculate(resp.Model, resp.InputTokens, resp.OutputTokens)
}

func (c *Client) Identity(ctx context.Context) (Identity, error) {
	return c.identity.Identity(ctx)
}

// Chat sends message with the given per-call overrides.
func (c *Client) Chat(ctx context.Context, message string, opts ...ChatOption) (*ChatResponse, error) {
	return c.Send(ctx, newChatRequest(message, opts))
}

// Send performs one signed gateway exchange. It never retries.
func (c *Client) Send(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	correlationID := uuid.NewString()
	ctx, span := telemetry.StartSpan(ctx, "gatewayclient.Send")
	defer span.End()

	start := time.Now()
	resp, model, err := c.send(ctx, req, correlationID)
	c.observe(span, metrics.ModeGateway, model, correlationID, start, resp, err)
	return resp, err
}

func (c *Client) send(ctx context.Context, req ChatRequest, correlationID string) (*ChatResponse, string, error) {
	out, err := builder.Build(req, c.cfg)
	if err != nil {
		return nil, "", err
	}
	out.Header.Set(RequestIDHeader, correlationID)

	creds, err := c.creds.Resolve(ctx)
	if err != nil {
		return nil, out.Model, err
	}

	httpReq, err := c.signer.Sign(ctx, out, creds, c.cfg.Region, signer.ServiceExecuteAPI)
	if err != nil {
		return nil, out.Model, err
	}

	c.logger.Debug("sending chat request",
		"gateway", c.cfg.GatewayURL,
		"model", out.Model,
		"correlation_id", correlationID,
		"history_turns", len(req.History),
	)

	resp, err := c.transport.Send(httpReq, out.Model)
	return resp, out.Model, err
}

// Direct sends req straight to Bedrock with the same credentials, bypassing
// the gateway. Use it to tell gateway failures from model failures.
func (c *Client) Direct(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	correlationID := uuid.NewString()
	ctx, span := telemetry.StartSpan(ctx, "gatewayclient.Direct")
	defer span.End()

	start := time.Now()
	resp, modelID, err := c.sendDirect(ctx, req)
	c.observe(span, metrics.ModeDirect, modelID, correlationID, start, resp, err)
	return resp, err
}

func (c *Client) sendDirect(ctx context.Context, req ChatRequest) (*ChatResponse, string, error) {
	if err := builder.Validate(req); err != nil {
		return nil, "", err
	}
	modelID, err := builder.ResolveModel(req.Model, c.cfg)
	if err != nil {
		return nil, "", err
	}

	// The SDK would otherwise surface a credential failure as a transport error.
	if _, err := c.creds.Resolve(ctx); err != nil {
		return nil, modelID, err
	}

	resp, err := c.direct.Chat(ctx, req, modelID)
	return resp, modelID, err
}

func (c *Client) observe(span trace.Span, mode, model, correlationID string, start time.Time, resp *ChatResponse, err error) {
	if model == "" {
		model = "unknown"
	}
	telemetry.AddRequestAttributes(span, mode, model, correlationID)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		kind := domain.KindOf(err)
		metrics.RecordError(mode, kind)
		metrics.RecordRequest(mode, model, kind, elapsed)
		telemetry.AddErrorAttribute(span, kind, err)

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			c.logger.Debug("chat failed", "mode", mode, "correlation_id", correlationID, "status", httpErr.StatusCode, "error_kind", kind)
		}
		return
	}

	metrics.RecordRequest(mode, model, "ok", elapsed)
	metrics.RecordTokens(mode, model, resp.InputTokens, resp.OutputTokens)
	if usd, ok := c.EstimateCost(resp); ok {
		metrics.RecordCost(mode, model, usd)
	}
	telemetry.AddResponseAttributes(span, resp.RequestID, string(resp.StopReason), resp.InputTokens, resp.OutputTokens)

	c.logger.Debug("chat completed",
		"mode", mode,
		"model", model,
		"correlation_id", correlationID,
		"request_id", resp.RequestID,
		"tokens", resp.Tokens,
		"latency_ms", resp.LatencyMs,
	)
}
