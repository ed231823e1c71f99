package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openaiSystemMessage = "You are a medical AI assistant. Always prioritize patient safety and provide conservative medical guidance."

// OpenAIProvider implements domain.Provider on the OpenAI chat completion API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	opts   Options
}

// NewOpenAI constructs an OpenAI-backed provider.
func NewOpenAI(opts Options) (*OpenAIProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key is required", ErrInvalidConfiguration)
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		opts:   opts,
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Generate sends a single chat completion request and returns the reply text.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.opts.temperature(),
		MaxTokens:   p.opts.maxTokens(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: openai", ErrDeadlineExceeded)
		}
		return "", fmt.Errorf("%w: openai: %v", ErrCallFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: openai", ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}
