package gatewayclient

// ChatOption overrides one per-call setting.
type ChatOption func(*ChatRequest)

// WithModel selects a model alias from the configured model map.
func WithModel(alias string) ChatOption {
	return func(r *ChatRequest) {
		r.Model = alias
	}
}

func WithSystem(prompt string) ChatOption {
	return func(r *ChatRequest) {
		r.System = prompt
	}
}

func WithMaxTokens(n int) ChatOption {
	return func(r *ChatRequest) {
		r.MaxTokens = &n
	}
}

func WithTemperature(t float64) ChatOption {
	return func(r *ChatRequest) {
		r.Temperature = &t
	}
}

func WithTopP(p float64) ChatOption {
	return func(r *ChatRequest) {
		r.TopP = &p
	}
}

// WithHistory sends turns before the new message, in order.
func WithHistory(turns []Turn) ChatOption {
	return func(r *ChatRequest) {
		r.History = turns
	}
}

func newChatRequest(message string, opts []ChatOption) ChatRequest {
	req := ChatRequest{Message: message}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
