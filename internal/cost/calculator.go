// Package cost estimates the on-demand price of a chat call from its token
// usage. Estimates use public list prices and ignore discounts, batch
// pricing and prompt caching.
package cost

import "sync"

type ModelPricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

var defaultPricing = map[string]ModelPricing{
	"anthropic.claude-sonnet-4-5-v1:0":          {InputPer1K: 0.003, OutputPer1K: 0.015},
	"anthropic.claude-haiku-4-5-v1:0":           {InputPer1K: 0.001, OutputPer1K: 0.005},
	"anthropic.claude-3-5-sonnet-20241022-v2:0": {InputPer1K: 0.003, OutputPer1K: 0.015},
	"anthropic.claude-3-5-haiku-20241022-v1:0":  {InputPer1K: 0.0008, OutputPer1K: 0.004},
	"anthropic.claude-3-haiku-20240307-v1:0":    {InputPer1K: 0.00025, OutputPer1K: 0.00125},
	"anthropic.claude-opus-4-1-20250805-v1:0":   {InputPer1K: 0.015, OutputPer1K: 0.075},
}

type Calculator struct {
	mu      sync.RWMutex
	pricing map[string]ModelPricing
}

func NewCalculator() *Calculator {
	pricing := make(map[string]ModelPricing, len(defaultPricing))
	for model, p := range defaultPricing {
		pricing[model] = p
	}
	return &Calculator{pricing: pricing}
}

// Calculate returns the estimated cost in USD, and false when the model has
// no known pricing.
func (c *Calculator) Calculate(modelID string, inputTokens, outputTokens int) (float64, bool) {
	c.mu.RLock()
	pricing, ok := c.pricing[modelID]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}

	inputCost := float64(inputTokens) / 1000 * pricing.InputPer1K
	outputCost := float64(outputTokens) / 1000 * pricing.OutputPer1K

	return inputCost + outputCost, true
}

func (c *Calculator) SetPricing(modelID string, pricing ModelPricing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pricing[modelID] = pricing
}
