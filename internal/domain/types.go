package domain

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GatewayConfig is the fully resolved client configuration. It is never
// mutated after resolution; reconfiguring replaces the whole value.
type GatewayConfig struct {
	GatewayURL string            `yaml:"gateway_url" json:"gateway_url"`
	Region     string            `yaml:"region" json:"region"`
	APIID      string            `yaml:"api_id,omitempty" json:"api_id,omitempty"`
	Profile    string            `yaml:"profile,omitempty" json:"profile,omitempty"`
	ModelMap   map[string]string `yaml:"model_map,omitempty" json:"model_map,omitempty"`
	Verbose    bool              `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// ModelID resolves a short alias to the provider model identifier.
func (c *GatewayConfig) ModelID(alias string) (string, bool) {
	id, ok := c.ModelMap[alias]
	return id, ok
}

// Aliases returns the configured model aliases in sorted order.
func (c *GatewayConfig) Aliases() []string {
	aliases := make([]string, 0, len(c.ModelMap))
	for alias := range c.ModelMap {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// ContentBlock is one element of a turn's content. Text blocks carry Text;
// any other block kind is kept verbatim in Raw and sent back unchanged.
type ContentBlock struct {
	Text string
	Raw  json.RawMessage
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Text: text}
}

func (b ContentBlock) IsText() bool {
	return b.Raw == nil
}

func (b ContentBlock) MarshalJSON() ([]byte, error) {
	if b.Raw != nil {
		return b.Raw, nil
	}
	return json.Marshal(struct {
		Text string `json:"text"`
	}{Text: b.Text})
}

func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if text, ok := fields["text"]; ok && len(fields) == 1 {
		var s string
		if err := json.Unmarshal(text, &s); err != nil {
			return err
		}
		*b = ContentBlock{Text: s}
		return nil
	}

	*b = ContentBlock{Raw: bytes.Clone(data)}
	return nil
}

// Turn is one message of a conversation.
type Turn struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Content: []ContentBlock{TextBlock(text)}}
}

// ChatRequest is a single chat invocation. Nil pointer fields take the
// configured defaults.
type ChatRequest struct {
	Message     string
	System      string
	History     []Turn
	Model       string
	MaxTokens   *int
	Temperature *float64
	TopP        *float64
}

// OutboundRequest is an unsigned HTTP request produced by the builder.
type OutboundRequest struct {
	Method string
	URL    string
	// Host overrides the URL host in the signed Host header when set.
	Host   string
	Header http.Header
	Body   []byte
	// Model is the resolved provider model identifier; it is not sent.
	Model string
}

type StopReason string

const (
	StopReasonEndTurn             StopReason = "end_turn"
	StopReasonMaxTokens           StopReason = "max_tokens"
	StopReasonStopSequence        StopReason = "stop_sequence"
	StopReasonToolUse             StopReason = "tool_use"
	StopReasonGuardrailIntervened StopReason = "guardrail_intervened"
	StopReasonContentFiltered     StopReason = "content_filtered"
)

type ChatResponse struct {
	Text         string         `json:"text"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	Tokens       int            `json:"tokens"`
	LatencyMs    int64          `json:"latency_ms"`
	RequestID    string         `json:"request_id"`
	Model        string         `json:"model"`
	StopReason   StopReason     `json:"stop_reason"`
	Raw          map[string]any `json:"raw_response,omitempty"`
}

func (r *ChatResponse) String() string {
	return r.Text
}

// Identity is the caller identity reported by STS.
type Identity struct {
	Account string `json:"account"`
	ARN     string `json:"arn"`
	UserID  string `json:"user_id"`
}
