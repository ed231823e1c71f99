package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGoogleModel = "gemini-pro"

// GoogleProvider implements domain.Provider on the Gemini API.
type GoogleProvider struct {
	client *genai.Client
	model  string
	opts   Options
}

// NewGoogle constructs a Gemini-backed provider using an API key.
func NewGoogle(ctx context.Context, opts Options) (*GoogleProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: google API key is required", ErrInvalidConfiguration)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = defaultGoogleModel
	}

	return &GoogleProvider{
		client: client,
		model:  model,
		opts:   opts,
	}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

// Generate sends one generateContent request and extracts only the text.
func (p *GoogleProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	temp := p.opts.temperature()
	outputTokens := int32(p.opts.maxTokens())

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: outputTokens,
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	res, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: google", ErrDeadlineExceeded)
		}
		return "", fmt.Errorf("%w: google: %v", ErrCallFailed, err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("%w: google", ErrEmptyCompletion)
	}
	return text, nil
}
