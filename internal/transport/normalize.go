package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

// Lambda proxy integrations may return the model output as a JSON string
// under "body".
type proxyEnvelope struct {
	Body    *string           `json:"body"`
	Headers map[string]string `json:"headers"`
}

// converseResponse uses pointers so an absent field can be told apart from
// a zero value.
type converseResponse struct {
	Output *struct {
		Message *struct {
			Role    string `json:"role"`
			Content []struct {
				Text *string `json:"text"`
			} `json:"content"`
		} `json:"message"`
	} `json:"output"`
	Usage *struct {
		InputTokens  *int `json:"inputTokens"`
		OutputTokens *int `json:"outputTokens"`
	} `json:"usage"`
	StopReason       *string `json:"stopReason"`
	ResponseMetadata *struct {
		RequestID string `json:"RequestId"`
	} `json:"ResponseMetadata"`
}

// Normalize parses a 2xx body. Any missing required field is
// ErrMalformedResponse.
func Normalize(body []byte, header http.Header, model string, latency time.Duration) (*domain.ChatResponse, error) {
	payload, envelopeHeaders, err := unwrap(body)
	if err != nil {
		return nil, err
	}

	var parsed converseResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, malformed("decode body: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, malformed("decode body: %v", err)
	}

	if parsed.Output == nil || parsed.Output.Message == nil {
		return nil, malformed("missing output.message")
	}

	text, ok := firstText(parsed)
	if !ok {
		return nil, malformed("output.message.content has no text block")
	}

	if parsed.Usage == nil {
		return nil, malformed("missing usage")
	}
	if parsed.Usage.InputTokens == nil || parsed.Usage.OutputTokens == nil {
		return nil, malformed("usage is missing inputTokens or outputTokens")
	}
	input, output := *parsed.Usage.InputTokens, *parsed.Usage.OutputTokens
	if input < 0 || output < 0 {
		return nil, malformed("negative token count (input=%d, output=%d)", input, output)
	}

	if parsed.StopReason == nil || *parsed.StopReason == "" {
		return nil, malformed("missing stopReason")
	}

	requestID := requestIDOf(parsed, envelopeHeaders, header)
	if requestID == "" {
		return nil, malformed("missing request id")
	}

	if latency < 0 {
		latency = 0
	}

	return &domain.ChatResponse{
		Text:         text,
		InputTokens:  input,
		OutputTokens: output,
		Tokens:       input + output,
		LatencyMs:    latency.Milliseconds(),
		RequestID:    requestID,
		Model:        model,
		StopReason:   domain.StopReason(*parsed.StopReason),
		Raw:          raw,
	}, nil
}

func unwrap(body []byte) ([]byte, map[string]string, error) {
	var env proxyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, malformed("decode body: %v", err)
	}
	if env.Body == nil {
		return body, nil, nil
	}
	return []byte(*env.Body), env.Headers, nil
}

func firstText(resp converseResponse) (string, bool) {
	for _, block := range resp.Output.Message.Content {
		if block.Text != nil {
			return *block.Text, true
		}
	}
	return "", false
}

func requestIDOf(resp converseResponse, envelopeHeaders map[string]string, header http.Header) string {
	if resp.ResponseMetadata != nil && resp.ResponseMetadata.RequestID != "" {
		return resp.ResponseMetadata.RequestID
	}
	for k, v := range envelopeHeaders {
		if http.CanonicalHeaderKey(k) == "X-Request-Id" && v != "" {
			return v
		}
	}
	return header.Get("X-Amzn-Requestid")
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, fmt.Sprintf(format, args...))
}
