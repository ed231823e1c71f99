package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel    = "claude-3-haiku-20240307"
	anthropicVersion         = "2023-06-01"
)

// AnthropicProvider implements domain.Provider on the Anthropic messages API.
type AnthropicProvider struct {
	client   *http.Client
	endpoint string
	model    string
	opts     Options
}

// NewAnthropic constructs a Claude-backed provider.
func NewAnthropic(opts Options) (*AnthropicProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", ErrInvalidConfiguration)
	}

	endpoint := opts.BaseURL
	if endpoint == "" {
		endpoint = defaultAnthropicEndpoint
	}
	model := opts.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicProvider{
		client:   &http.Client{Timeout: opts.timeout()},
		endpoint: endpoint,
		model:    model,
		opts:     opts,
	}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate sends one messages request and extracts the text blocks.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	payload := anthropicRequest{
		Model:       p.model,
		MaxTokens:   p.opts.maxTokens(),
		Temperature: p.opts.temperature(),
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	headers := map[string]string{
		"x-api-key":         p.opts.APIKey,
		"anthropic-version": anthropicVersion,
	}

	body, err := postJSON(ctx, p.client, p.endpoint, headers, payload)
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: anthropic: decode response: %v", ErrCallFailed, err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic", ErrEmptyCompletion)
	}
	return out.String(), nil
}
