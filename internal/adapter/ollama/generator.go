package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"insight-engine/internal/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string         `json:"model"`
	Messages  []chatMessage  `json:"messages"`
	Stream    bool           `json:"stream"`
	KeepAlive int            `json:"keep_alive"`
	Options   map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Generator sends prompts to Ollama's chat endpoint. Calls are paced by a
// rate limiter so a burst of queries cannot overwhelm the shared model host.
type Generator struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewGenerator constructs a generator. requestsPerSecond <= 0 disables
// pacing.
func NewGenerator(baseURL, model string, client *http.Client, requestsPerSecond float64) *Generator {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Generator{
		baseURL: trimSlash(baseURL),
		model:   model,
		client:  client,
		limiter: limiter,
	}
}

// Generate sends the prompt and returns the assistant message.
func (g *Generator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (*domain.LLMResponse, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", err)
		}
	}

	reqBody := chatRequest{
		Model:     g.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		Stream:    false,
		KeepAlive: -1,
		Options: map[string]any{
			"temperature": temperature,
		},
	}
	if maxTokens > 0 {
		reqBody.Options["num_predict"] = maxTokens
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	return &domain.LLMResponse{
		Text: strings.TrimSpace(chatResp.Message.Content),
		Done: chatResp.Done,
	}, nil
}

// Healthy probes the version endpoint, which responds without loading a
// model.
func (g *Generator) Healthy(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/version", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("generation backend unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generation backend returned status %d", resp.StatusCode)
	}
	return nil
}

func (g *Generator) Version() string {
	return g.model
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}

var _ domain.LLMClient = (*Generator)(nil)
