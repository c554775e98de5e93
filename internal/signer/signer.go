// Package signer applies AWS Signature Version 4 to outbound gateway
// requests. It consumes resolved credentials and never discovers them.
package signer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

// ServiceExecuteAPI is the signing name of API Gateway.
const ServiceExecuteAPI = "execute-api"

type Signer struct {
	signer *v4.Signer
	now    func() time.Time
}

type Option func(*Signer)

// WithClock fixes the signing time source.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

func New(opts ...Option) *Signer {
	s := &Signer{
		signer: v4.NewSigner(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign builds an *http.Request from out and signs method, path, query,
// headers and the body hash with creds. The returned request carries the
// Authorization, X-Amz-Date and, for temporary credentials,
// X-Amz-Security-Token headers.
func (s *Signer) Sign(ctx context.Context, out *domain.OutboundRequest, creds aws.Credentials, region, service string) (*http.Request, error) {
	if !creds.HasKeys() {
		return nil, fmt.Errorf("%w: credentials have no access key", domain.ErrAuthentication)
	}
	if creds.Expired() {
		return nil, fmt.Errorf("%w: credentials expired at %s", domain.ErrAuthentication, creds.Expires.Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, out.Method, out.URL, bytes.NewReader(out.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrConfiguration, err)
	}

	for key, values := range out.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if out.Host != "" {
		req.Host = out.Host
	}

	if err := s.signer.SignHTTP(ctx, creds, req, PayloadHash(out.Body), service, region, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: sign request: %v", domain.ErrAuthentication, err)
	}

	return req, nil
}

// PayloadHash is the hex SHA-256 of body. An empty body hashes the empty
// string, never a literal "UNSIGNED-PAYLOAD".
func PayloadHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
