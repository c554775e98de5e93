// Package credentials resolves short-lived signing credentials. The signer
// only ever sees the resolved aws.Credentials value.
package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

// Provider yields usable credentials or an ErrAuthentication failure.
type Provider interface {
	Resolve(ctx context.Context) (aws.Credentials, error)
}

type awsProvider struct {
	provider aws.CredentialsProvider
}

// FromAWS adapts an SDK credentials provider, caching until expiry.
func FromAWS(p aws.CredentialsProvider) Provider {
	if _, ok := p.(*aws.CredentialsCache); !ok {
		p = aws.NewCredentialsCache(p)
	}
	return &awsProvider{provider: p}
}

func (a *awsProvider) Resolve(ctx context.Context) (aws.Credentials, error) {
	creds, err := a.provider.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("%w: no usable AWS credentials (run `aws configure` or set AWS_PROFILE): %w",
			domain.ErrAuthentication, err)
	}
	if !creds.HasKeys() {
		return aws.Credentials{}, fmt.Errorf("%w: credentials from %s have no keys", domain.ErrAuthentication, creds.Source)
	}
	return creds, nil
}

// NewStatic uses explicitly supplied keys.
func NewStatic(accessKeyID, secretAccessKey, sessionToken string) Provider {
	return FromAWS(awscreds.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken))
}

// LoadAWSConfig loads the SDK default chain (env, shared profile, SSO,
// container and instance roles) for region, pinned to profile when set.
func LoadAWSConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("%w: load aws config: %w", domain.ErrAuthentication, err)
	}
	return cfg, nil
}

// NewDefaultChain resolves credentials through the SDK default chain.
func NewDefaultChain(ctx context.Context, region, profile string) (Provider, aws.Config, error) {
	cfg, err := LoadAWSConfig(ctx, region, profile)
	if err != nil {
		return nil, aws.Config{}, err
	}
	if cfg.Credentials == nil {
		return nil, aws.Config{}, fmt.Errorf("%w: no credential provider configured", domain.ErrAuthentication)
	}
	return FromAWS(cfg.Credentials), cfg, nil
}

// AsAWS exposes p to SDK clients such as STS.
func AsAWS(p Provider) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(p.Resolve)
}
