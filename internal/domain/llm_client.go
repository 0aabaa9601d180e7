package domain

import "context"

// LLMClient defines the capability to send prompts to a text-generation
// backend and receive textual responses.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (*LLMResponse, error)

	// Healthy reports whether the backend is reachable. Checked once per
	// query at orchestrator entry to select the degraded path up front
	// instead of discovering unavailability deep inside synthesis.
	Healthy(ctx context.Context) error

	Version() string
}

// LLMResponse carries the generated text and whether generation finished.
type LLMResponse struct {
	Text string
	Done bool
}
