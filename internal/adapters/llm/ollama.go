package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultOllamaModel = "llama3.2:3b"

// OllamaProvider implements domain.Provider on a local Ollama server. It is
// the only backend that needs no credential: it is selected when its base URL
// is configured.
type OllamaProvider struct {
	client  *http.Client
	baseURL string
	model   string
	opts    Options
}

// NewOllama constructs a provider for an Ollama inference server.
func NewOllama(opts Options) (*OllamaProvider, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: ollama base URL is required", ErrInvalidConfiguration)
	}

	model := opts.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &OllamaProvider{
		client:  &http.Client{Timeout: opts.timeout()},
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		model:   model,
		opts:    opts,
	}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Generate sends one non-streaming generate request.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	temp := p.opts.Temperature
	if temp == 0 {
		// Local models need a little more freedom than the hosted ones to
		// produce well-formed JSON.
		temp = 0.3
	}
	maxTokens := p.opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	payload := ollamaRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: temp,
			TopP:        0.9,
			NumPredict:  maxTokens,
		},
	}

	body, err := postJSON(ctx, p.client, p.baseURL+"/api/generate", nil, payload)
	if err != nil {
		return "", err
	}

	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: ollama: decode response: %v", ErrCallFailed, err)
	}
	if resp.Response == "" {
		return "", fmt.Errorf("%w: ollama", ErrEmptyCompletion)
	}
	return resp.Response, nil
}
