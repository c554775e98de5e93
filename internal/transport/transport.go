// Package transport performs the single signed gateway exchange and maps
// the outcome onto the client error taxonomy or a normalized ChatResponse.
package transport

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 64 << 10

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Transport struct {
	client Doer
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Transport)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Transport) {
		t.now = now
	}
}

func New(client Doer, opts ...Option) *Transport {
	t := &Transport{
		client: client,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send performs exactly one request. model is the resolved provider model
// identifier recorded on the response.
func (t *Transport) Send(req *http.Request, model string) (*domain.ChatResponse, error) {
	start := t.now()

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("gateway request failed", "url", req.URL.Redacted(), "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrNetwork, err)
	}
	latency := t.now().Sub(start)

	t.logger.Debug("gateway response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"latency_ms", latency.Milliseconds(),
	)

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		t.logger.Warn("gateway rejected request", "status", resp.StatusCode, "error_kind", domain.KindOf(err))
		return nil, err
	}

	return Normalize(body, resp.Header, model, latency)
}

func classifyStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &domain.HTTPError{Kind: KindForStatus(status), StatusCode: status, Body: string(body)}
}

// KindForStatus maps a non-2xx status to its error kind. The gateway does
// not distinguish a bad signature from missing IAM permission, so both are
// authentication failures.
func KindForStatus(status int) error {
	switch status {
	case http.StatusForbidden:
		return domain.ErrAuthentication
	case http.StatusNotFound:
		return domain.ErrConfiguration
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return domain.ErrGateway
	}
}
