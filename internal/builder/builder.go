// Package builder turns a chat invocation into the unsigned gateway request.
package builder

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/config"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

type converseRequest struct {
	Messages        []domain.Turn         `json:"messages"`
	Model           string                `json:"model"`
	InferenceConfig inferenceConfig       `json:"inferenceConfig"`
	System          []domain.ContentBlock `json:"system,omitempty"`
}

type inferenceConfig struct {
	MaxTokens   int      `json:"maxTokens"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
}

// Build validates req, resolves its model alias through cfg and serializes
// the Converse-shaped body. History is sent verbatim, followed by the new
// user turn.
func Build(req domain.ChatRequest, cfg *domain.GatewayConfig) (*domain.OutboundRequest, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	modelID, err := ResolveModel(req.Model, cfg)
	if err != nil {
		return nil, err
	}

	maxTokens := config.DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	messages := make([]domain.Turn, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, domain.UserTurn(req.Message))

	payload := converseRequest{
		Messages: messages,
		Model:    modelID,
		InferenceConfig: inferenceConfig{
			MaxTokens:   maxTokens,
			Temperature: req.Temperature,
			TopP:        req.TopP,
		},
	}
	if req.System != "" {
		payload.System = []domain.ContentBlock{domain.TextBlock(req.System)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	return &domain.OutboundRequest{
		Method: http.MethodPost,
		URL:    cfg.GatewayURL,
		Host:   Host(cfg),
		Header: header,
		Body:   body,
		Model:  modelID,
	}, nil
}

// ResolveModel maps alias (or the default alias when empty) to the provider
// model identifier. Unknown aliases are an error, never passed through.
func ResolveModel(alias string, cfg *domain.GatewayConfig) (string, error) {
	if alias == "" {
		alias = config.DefaultModel
	}
	id, ok := cfg.ModelID(alias)
	if !ok {
		return "", fmt.Errorf("%w: unknown model alias %q (configured: %s)",
			domain.ErrConfiguration, alias, strings.Join(cfg.Aliases(), ", "))
	}
	return id, nil
}

// Host returns the execute-api host used for private APIs reached through a
// VPC endpoint, or "" when the URL host should be signed as is.
func Host(cfg *domain.GatewayConfig) string {
	if cfg.APIID == "" {
		return ""
	}
	return fmt.Sprintf("%s.execute-api.%s.amazonaws.com", cfg.APIID, cfg.Region)
}

// Validate checks the call arguments.
func Validate(req domain.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message must not be empty", domain.ErrValidation)
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be a positive integer, got %d", domain.ErrValidation, *req.MaxTokens)
	}
	if req.MaxTokens != nil && *req.MaxTokens > math.MaxInt32 {
		return fmt.Errorf("%w: max_tokens must be at most %d, got %d", domain.ErrValidation, math.MaxInt32, *req.MaxTokens)
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 1) {
		return fmt.Errorf("%w: temperature must be within [0, 1], got %g", domain.ErrValidation, *req.Temperature)
	}
	if req.TopP != nil && (*req.TopP < 0 || *req.TopP > 1) {
		return fmt.Errorf("%w: top_p must be within [0, 1], got %g", domain.ErrValidation, *req.TopP)
	}

	for i, turn := range req.History {
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			return fmt.Errorf("%w: conversation_history[%d] has role %q, want user or assistant", domain.ErrValidation, i, turn.Role)
		}
		if len(turn.Content) == 0 {
			return fmt.Errorf("%w: conversation_history[%d] has no content blocks", domain.ErrValidation, i)
		}
	}
	return nil
}
