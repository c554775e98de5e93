package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

type mockSecretsManager struct {
	calls              int
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *mockSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.calls++
	return m.GetSecretValueFunc(ctx, params)
}

func secretReturning(value string) *mockSecretsManager {
	return &mockSecretsManager{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(value)}, nil
		},
	}
}

type mockSTS struct {
	GetCallerIdentityFunc func(ctx context.Context) (*sts.GetCallerIdentityOutput, error)
}

func (m *mockSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return m.GetCallerIdentityFunc(ctx)
}

func TestNewStatic(t *testing.T) {
	creds, err := NewStatic("AKID", "SECRET", "TOKEN").Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "SECRET" || creds.SessionToken != "TOKEN" {
		t.Errorf("Resolve() = %+v, want static keys", creds)
	}
}

func TestNewStatic_Empty(t *testing.T) {
	_, err := NewStatic("", "", "").Resolve(context.Background())
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("Resolve() error = %v, want ErrAuthentication", err)
	}
}

func TestFromAWS_RetrieveError(t *testing.T) {
	failing := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New("no profile")
	})

	_, err := FromAWS(failing).Resolve(context.Background())
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("Resolve() error = %v, want ErrAuthentication", err)
	}
}

func TestAsAWS(t *testing.T) {
	creds, err := AsAWS(NewStatic("AKID", "SECRET", "")).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if creds.AccessKeyID != "AKID" {
		t.Errorf("AccessKeyID = %q, want AKID", creds.AccessKeyID)
	}
}

func TestSecretsManagerProvider_Resolve(t *testing.T) {
	client := secretReturning(`{"access_key_id":"AKID","secret_access_key":"SECRET","session_token":"TOKEN"}`)
	p := NewSecretsManagerProvider(client, "gateway/keys")

	creds, err := p.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "SECRET" || creds.SessionToken != "TOKEN" {
		t.Errorf("Resolve() = %+v, want keys from secret", creds)
	}

	if _, err := p.Resolve(context.Background()); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if client.calls != 1 {
		t.Errorf("GetSecretValue calls = %d, want 1 (cached)", client.calls)
	}

	p.ClearCache()
	if _, err := p.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve() after ClearCache error = %v", err)
	}
	if client.calls != 2 {
		t.Errorf("GetSecretValue calls = %d, want 2 after ClearCache", client.calls)
	}
}

func TestSecretsManagerProvider_TTL(t *testing.T) {
	client := secretReturning(`{"access_key_id":"AKID","secret_access_key":"SECRET"}`)
	p := NewSecretsManagerProvider(client, "gateway/keys")
	p.SetCacheTTL(-time.Second)

	p.Resolve(context.Background())
	p.Resolve(context.Background())

	if client.calls != 2 {
		t.Errorf("GetSecretValue calls = %d, want 2 with expired cache", client.calls)
	}
}

func TestSecretsManagerProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *mockSecretsManager
	}{
		{"fetch failure", &mockSecretsManager{
			GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, errors.New("access denied")
			},
		}},
		{"binary secret", &mockSecretsManager{
			GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{SecretBinary: []byte{1}}, nil
			},
		}},
		{"invalid json", secretReturning("not json")},
		{"missing secret key", secretReturning(`{"access_key_id":"AKID"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSecretsManagerProvider(tt.client, "gateway/keys").Resolve(context.Background())
			if !errors.Is(err, domain.ErrAuthentication) {
				t.Errorf("Resolve() error = %v, want ErrAuthentication", err)
			}
		})
	}
}

func TestIdentityChecker(t *testing.T) {
	checker := NewIdentityCheckerWithClient(&mockSTS{
		GetCallerIdentityFunc: func(ctx context.Context) (*sts.GetCallerIdentityOutput, error) {
			return &sts.GetCallerIdentityOutput{
				Account: aws.String("123456789012"),
				Arn:     aws.String("arn:aws:iam::123456789012:user/dev"),
				UserId:  aws.String("AIDAEXAMPLE"),
			}, nil
		},
	})

	id, err := checker.Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity() error = %v", err)
	}

	want := domain.Identity{Account: "123456789012", ARN: "arn:aws:iam::123456789012:user/dev", UserID: "AIDAEXAMPLE"}
	if id != want {
		t.Errorf("Identity() = %+v, want %+v", id, want)
	}
}

func TestIdentityChecker_Error(t *testing.T) {
	checker := NewIdentityCheckerWithClient(&mockSTS{
		GetCallerIdentityFunc: func(ctx context.Context) (*sts.GetCallerIdentityOutput, error) {
			return nil, errors.New("ExpiredToken")
		},
	})

	_, err := checker.Identity(context.Background())
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("Identity() error = %v, want ErrAuthentication", err)
	}
}
