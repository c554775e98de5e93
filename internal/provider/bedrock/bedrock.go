// Package bedrock calls the Bedrock Converse API directly, bypassing the
// gateway. It is a diagnostic path: when a gateway call fails, the same
// request sent here tells gateway problems apart from model problems.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/builder"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/config"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/transport"
)

type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Provider struct {
	client ConverseAPI
	now    func() time.Time
}

// NewWithConfig builds a Converse client that makes exactly one attempt per
// call; the SDK's default retryer is replaced.
func NewWithConfig(cfg aws.Config) *Provider {
	return NewWithClient(bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		o.Retryer = aws.NopRetryer{}
	}))
}

func NewWithClient(client ConverseAPI) *Provider {
	return &Provider{
		client: client,
		now:    time.Now,
	}
}

// Chat sends req to modelID with one Converse call and normalizes the
// output into the same shape the gateway path returns.
func (p *Provider) Chat(ctx context.Context, req domain.ChatRequest, modelID string) (*domain.ChatResponse, error) {
	if err := builder.Validate(req); err != nil {
		return nil, err
	}

	input, err := toConverseInput(req, modelID)
	if err != nil {
		return nil, err
	}

	start := p.now()
	output, err := p.client.Converse(ctx, input)
	latency := p.now().Sub(start)
	if err != nil {
		return nil, mapError(err)
	}

	return fromConverseOutput(output, modelID, latency)
}

func toConverseInput(req domain.ChatRequest, modelID string) (*bedrockruntime.ConverseInput, error) {
	messages := make([]types.Message, 0, len(req.History)+1)
	for i, turn := range req.History {
		content := make([]types.ContentBlock, 0, len(turn.Content))
		for _, block := range turn.Content {
			if !block.IsText() {
				return nil, fmt.Errorf("%w: conversation_history[%d]: direct mode sends text blocks only", domain.ErrValidation, i)
			}
			content = append(content, &types.ContentBlockMemberText{Value: block.Text})
		}
		messages = append(messages, types.Message{
			Role:    types.ConversationRole(turn.Role),
			Content: content,
		})
	}
	messages = append(messages, types.Message{
		Role:    types.ConversationRoleUser,
		Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Message}},
	})

	maxTokens := config.DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	inference := &types.InferenceConfiguration{
		MaxTokens: aws.Int32(int32(maxTokens)),
	}
	if req.Temperature != nil {
		inference.Temperature = aws.Float32(float32(*req.Temperature))
	}
	if req.TopP != nil {
		inference.TopP = aws.Float32(float32(*req.TopP))
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(modelID),
		Messages:        messages,
		InferenceConfig: inference,
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}

	return input, nil
}

func fromConverseOutput(out *bedrockruntime.ConverseOutput, modelID string, latency time.Duration) (*domain.ChatResponse, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("%w: converse output has no message", domain.ErrMalformedResponse)
	}

	text, found := "", false
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			text, found = t.Value, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: converse message has no text block", domain.ErrMalformedResponse)
	}

	if out.Usage == nil || out.Usage.InputTokens == nil || out.Usage.OutputTokens == nil {
		return nil, fmt.Errorf("%w: converse output has no usage", domain.ErrMalformedResponse)
	}
	if out.StopReason == "" {
		return nil, fmt.Errorf("%w: converse output has no stop reason", domain.ErrMalformedResponse)
	}

	requestID, ok := awsmiddleware.GetRequestIDMetadata(out.ResultMetadata)
	if !ok || requestID == "" {
		return nil, fmt.Errorf("%w: converse output has no request id", domain.ErrMalformedResponse)
	}

	input := int(aws.ToInt32(out.Usage.InputTokens))
	output := int(aws.ToInt32(out.Usage.OutputTokens))

	raw := map[string]any{
		"stopReason": string(out.StopReason),
		"usage": map[string]any{
			"inputTokens":  input,
			"outputTokens": output,
			"totalTokens":  int(aws.ToInt32(out.Usage.TotalTokens)),
		},
	}
	if out.Metrics != nil {
		raw["metrics"] = map[string]any{"latencyMs": aws.ToInt64(out.Metrics.LatencyMs)}
	}

	return &domain.ChatResponse{
		Text:         text,
		InputTokens:  input,
		OutputTokens: output,
		Tokens:       input + output,
		LatencyMs:    latency.Milliseconds(),
		RequestID:    requestID,
		Model:        modelID,
		StopReason:   domain.StopReason(out.StopReason),
		Raw:          raw,
	}, nil
}

// mapError applies the gateway status mapping to SDK failures. Errors that
// never produced an HTTP response are network failures.
func mapError(err error) error {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		return fmt.Errorf("%w: %w", &domain.HTTPError{
			Kind:       transport.KindForStatus(status),
			StatusCode: status,
			Body:       respErr.Error(),
		}, err)
	}
	return fmt.Errorf("%w: converse: %w", domain.ErrNetwork, err)
}
