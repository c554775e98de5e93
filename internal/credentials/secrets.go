package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerProvider reads signing keys from a JSON secret of the form
// {"access_key_id": "...", "secret_access_key": "...", "session_token": "..."}.
type SecretsManagerProvider struct {
	client   SecretsManagerAPI
	secretID string

	mu        sync.RWMutex
	cached    *aws.Credentials
	expiresAt time.Time
	ttl       time.Duration
}

type secretKeys struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token,omitempty"`
}

func NewSecretsManagerProvider(client SecretsManagerAPI, secretID string) *SecretsManagerProvider {
	return &SecretsManagerProvider{
		client:   client,
		secretID: secretID,
		ttl:      5 * time.Minute,
	}
}

// NewSecretsManagerProviderFromConfig reads the secret with the identity in cfg.
func NewSecretsManagerProviderFromConfig(cfg aws.Config, secretID string) *SecretsManagerProvider {
	return NewSecretsManagerProvider(secretsmanager.NewFromConfig(cfg), secretID)
}

func (p *SecretsManagerProvider) Resolve(ctx context.Context) (aws.Credentials, error) {
	p.mu.RLock()
	if p.cached != nil && time.Now().Before(p.expiresAt) {
		creds := *p.cached
		p.mu.RUnlock()
		return creds, nil
	}
	p.mu.RUnlock()

	result, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretID),
	})
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("%w: get secret %s: %w", domain.ErrAuthentication, p.secretID, err)
	}
	if result.SecretString == nil {
		return aws.Credentials{}, fmt.Errorf("%w: secret %s has no string value", domain.ErrAuthentication, p.secretID)
	}

	var keys secretKeys
	if err := json.Unmarshal([]byte(*result.SecretString), &keys); err != nil {
		return aws.Credentials{}, fmt.Errorf("%w: decode secret %s: %v", domain.ErrAuthentication, p.secretID, err)
	}
	if keys.AccessKeyID == "" || keys.SecretAccessKey == "" {
		return aws.Credentials{}, fmt.Errorf("%w: secret %s is missing access_key_id or secret_access_key", domain.ErrAuthentication, p.secretID)
	}

	creds := aws.Credentials{
		AccessKeyID:     keys.AccessKeyID,
		SecretAccessKey: keys.SecretAccessKey,
		SessionToken:    keys.SessionToken,
		Source:          "SecretsManager",
	}

	p.mu.Lock()
	p.cached = &creds
	p.expiresAt = time.Now().Add(p.ttl)
	p.mu.Unlock()

	return creds, nil
}

func (p *SecretsManagerProvider) SetCacheTTL(ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ttl = ttl
}

func (p *SecretsManagerProvider) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
}
