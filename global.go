package gatewayclient

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/config"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

// global is replaced whole by Configure and never mutated in place.
var global atomic.Pointer[GatewayConfig]

// ConfigureOptions feeds Configure. Empty fields fall back to the
// environment, then the config file.
type ConfigureOptions struct {
	GatewayURL string
	APIID      string
	Region     string
	Profile    string
	ModelMap   map[string]string

	// Save writes the merged configuration to ConfigPath.
	Save       bool
	ConfigPath string
	Env        LookupFunc
}

// Configure resolves and installs the process-wide configuration used by
// the package-level Chat. When opts.Save is set the result is also written
// to the config file; a failed write is reported but the new configuration
// stays active.
func Configure(opts ConfigureOptions) (*GatewayConfig, error) {
	lookup := opts.Env
	if lookup == nil {
		lookup = os.LookupEnv
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.LoadFrom(lookup).ConfigPath
	}
	file, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(config.Partial{
		GatewayURL: opts.GatewayURL,
		APIID:      opts.APIID,
		Region:     opts.Region,
		Profile:    opts.Profile,
		ModelMap:   opts.ModelMap,
	}, config.FromEnv(lookup), file)
	if err != nil {
		return nil, err
	}

	global.Store(cfg)

	if opts.Save {
		if err := config.Save(path, cfg); err != nil {
			return cfg, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
	}
	return cfg, nil
}

// Configured returns the process-wide configuration, or nil.
func Configured() *GatewayConfig {
	return global.Load()
}

// Chat sends one message with the process-wide configuration and returns
// the reply text. Without a prior Configure it resolves from the
// environment and config file.
func Chat(ctx context.Context, message string, opts ...ChatOption) (string, error) {
	client, err := globalClient(ctx, os.LookupEnv)
	if err != nil {
		return "", err
	}

	resp, err := client.Chat(ctx, message, opts...)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// globalClient applies the same process settings (timeout, credentials
// secret) whether or not Configure installed a configuration.
func globalClient(ctx context.Context, lookup LookupFunc) (*Client, error) {
	settings := config.LoadFrom(lookup)
	opts := Options{
		Env:               lookup,
		Timeout:           settings.Timeout,
		CredentialsSecret: settings.CredentialsSecret,
	}

	if cfg := global.Load(); cfg != nil {
		return NewWithConfig(ctx, cfg, opts)
	}
	return New(ctx, opts)
}
