package transport

import (
	"net"
	"net/http"
	"time"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/config"
)

type ClientConfig struct {
	Timeout               time.Duration
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	IdleConnTimeout       time.Duration
	MaxIdleConnsPerHost   int
}

// DefaultClientConfig bounds the whole exchange by config.DefaultTimeout.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:               config.DefaultTimeout,
		DialTimeout:           10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: config.DefaultTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   2,
	}
}

// NewHTTPClient builds the client used for gateway calls. Redirects follow
// net/http defaults.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

// NewHTTPClientWithTimeout is DefaultClientConfig with the overall timeout
// replaced. A non-positive timeout keeps the default.
func NewHTTPClientWithTimeout(timeout time.Duration) *http.Client {
	cfg := DefaultClientConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
		if timeout > cfg.ResponseHeaderTimeout {
			cfg.ResponseHeaderTimeout = timeout
		}
	}
	return NewHTTPClient(cfg)
}
