package openaiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"insight-engine/internal/domain"
)

const healthTimeout = 5 * time.Second

// Generator produces text through an OpenAI-compatible chat completion API.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator creates an OpenAI-compatible generation provider.
func NewGenerator(apiKey, baseURL, model string, httpClient *http.Client) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (*domain.LLMResponse, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	return &domain.LLMResponse{
		Text: strings.TrimSpace(choice.Message.Content),
		Done: choice.FinishReason != openai.FinishReasonLength,
	}, nil
}

// Healthy lists models, the cheapest authenticated round trip the API
// offers.
func (g *Generator) Healthy(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if _, err := g.client.ListModels(healthCtx); err != nil {
		return fmt.Errorf("generation backend unreachable: %w", err)
	}
	return nil
}

func (g *Generator) Version() string {
	return g.model
}

var _ domain.LLMClient = (*Generator)(nil)
