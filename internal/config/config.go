// Package config resolves gateway client configuration from explicit
// arguments, the process environment and the persisted YAML file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

const (
	EnvGatewayURL = "BEDROCK_GATEWAY_URL"
	EnvAPIID      = "BEDROCK_GATEWAY_API_ID"
	EnvRegion     = "BEDROCK_GATEWAY_REGION"
	EnvProfile    = "AWS_PROFILE"
	EnvVerbose    = "BEDROCK_GATEWAY_VERBOSE"
	EnvConfigPath = "BEDROCK_GATEWAY_CONFIG"
	EnvTimeout    = "BEDROCK_GATEWAY_TIMEOUT"
	EnvLogLevel   = "LOG_LEVEL"
	EnvSecret     = "BEDROCK_GATEWAY_CREDENTIALS_SECRET"

	DefaultModel     = "sonnet-4.5"
	DefaultMaxTokens = 2000
	DefaultTimeout   = 30 * time.Second
)

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Settings holds the process-level knobs that are not part of the gateway
// configuration itself.
type Settings struct {
	LogLevel   string
	Timeout    time.Duration
	ConfigPath string

	// CredentialsSecret names a Secrets Manager secret holding signing keys.
	CredentialsSecret string
}

func Load() *Settings {
	return LoadFrom(os.LookupEnv)
}

func LoadFrom(lookup LookupFunc) *Settings {
	return &Settings{
		LogLevel:   getEnv(lookup, EnvLogLevel, "info"),
		Timeout:    getDurationEnv(lookup, EnvTimeout, DefaultTimeout),
		ConfigPath: getEnv(lookup, EnvConfigPath, DefaultPath()),

		CredentialsSecret: getEnv(lookup, EnvSecret, ""),
	}
}

// Partial is one configuration source before merging. Empty fields mean the
// source does not supply a value.
type Partial struct {
	GatewayURL string            `yaml:"gateway_url,omitempty"`
	APIID      string            `yaml:"api_id,omitempty"`
	Region     string            `yaml:"region,omitempty"`
	Profile    string            `yaml:"profile,omitempty"`
	ModelMap   map[string]string `yaml:"model_map,omitempty"`
	Verbose    bool              `yaml:"verbose,omitempty"`

	// Older config files wrote the profile under this key.
	AWSProfile string `yaml:"aws_profile,omitempty"`
}

// FromEnv reads the environment source.
func FromEnv(lookup LookupFunc) Partial {
	verbose, _ := strconv.ParseBool(getEnv(lookup, EnvVerbose, "false"))
	return Partial{
		GatewayURL: getEnv(lookup, EnvGatewayURL, ""),
		APIID:      getEnv(lookup, EnvAPIID, ""),
		Region:     getEnv(lookup, EnvRegion, ""),
		Profile:    getEnv(lookup, EnvProfile, ""),
		Verbose:    verbose,
	}
}

func DefaultModelMap() map[string]string {
	return map[string]string{
		"sonnet-4.5": "anthropic.claude-sonnet-4-5-v1:0",
		"sonnet":     "anthropic.claude-sonnet-4-5-v1:0",
		"haiku-4.5":  "anthropic.claude-haiku-4-5-v1:0",
		"haiku":      "anthropic.claude-haiku-4-5-v1:0",
	}
}

// Resolve merges the sources field by field: explicit beats env beats file.
// Model maps are merged key by key over the built-in defaults so a shared
// file map can be extended with private aliases.
func Resolve(explicit, env Partial, file *Partial) (*domain.GatewayConfig, error) {
	var fromFile Partial
	if file != nil {
		fromFile = *file
	}

	cfg := &domain.GatewayConfig{
		GatewayURL: firstNonEmpty(explicit.GatewayURL, env.GatewayURL, fromFile.GatewayURL),
		Region:     firstNonEmpty(explicit.Region, env.Region, fromFile.Region),
		APIID:      firstNonEmpty(explicit.APIID, env.APIID, fromFile.APIID),
		Profile:    firstNonEmpty(explicit.Profile, env.Profile, fromFile.Profile),
		ModelMap:   mergeModelMaps(DefaultModelMap(), fromFile.ModelMap, env.ModelMap, explicit.ModelMap),
		Verbose:    explicit.Verbose || env.Verbose || fromFile.Verbose,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields every request depends on.
func Validate(cfg *domain.GatewayConfig) error {
	if cfg.GatewayURL == "" {
		return fmt.Errorf("%w: gateway_url is required (pass it explicitly, set %s, or run `bedrock-gateway configure`)",
			domain.ErrConfiguration, EnvGatewayURL)
	}
	u, err := url.Parse(cfg.GatewayURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%w: gateway_url %q is not an absolute http(s) URL", domain.ErrConfiguration, cfg.GatewayURL)
	}
	if cfg.Region == "" {
		return fmt.Errorf("%w: region is required (pass it explicitly, set %s, or run `bedrock-gateway configure`)",
			domain.ErrConfiguration, EnvRegion)
	}
	return nil
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bedrock-gateway", "config.yaml")
	}
	return filepath.Join(home, ".bedrock-gateway", "config.yaml")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func mergeModelMaps(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for alias, id := range m {
			if alias == "" || id == "" {
				continue
			}
			merged[alias] = id
		}
	}
	return merged
}

func getEnv(lookup LookupFunc, key, defaultValue string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(lookup LookupFunc, key string, defaultValue time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
