package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CustomProvider implements domain.Provider on a generic HTTP endpoint that
// accepts a prompt and returns text under a "response", "text" or "content"
// field.
type CustomProvider struct {
	client  *http.Client
	baseURL string
	model   string
	opts    Options
}

// NewCustom constructs a provider for a caller-supplied HTTP backend.
func NewCustom(opts Options) (*CustomProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: custom API key is required", ErrInvalidConfiguration)
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: custom base URL is required", ErrInvalidConfiguration)
	}

	model := opts.Model
	if model == "" {
		model = "default"
	}

	return &CustomProvider{
		client:  &http.Client{Timeout: opts.timeout()},
		baseURL: opts.BaseURL,
		model:   model,
		opts:    opts,
	}, nil
}

func (p *CustomProvider) Name() string { return "custom" }

type customRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type customResponse struct {
	Response string `json:"response"`
	Text     string `json:"text"`
	Content  string `json:"content"`
}

// Generate posts the prompt and extracts whichever reply field is populated,
// in the order response, text, content.
func (p *CustomProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	payload := customRequest{
		Prompt:      prompt,
		Model:       p.model,
		Temperature: p.opts.temperature(),
		MaxTokens:   p.opts.maxTokens(),
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.opts.APIKey,
	}

	body, err := postJSON(ctx, p.client, p.baseURL, headers, payload)
	if err != nil {
		return "", err
	}

	var resp customResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: custom: decode response: %v", ErrCallFailed, err)
	}

	for _, text := range []string{resp.Response, resp.Text, resp.Content} {
		if text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: custom", ErrEmptyCompletion)
}
