package llm

import (
	"context"
	"fmt"

	"github.com/healthai/triage-agent/internal/domain"
)

// Select walks the priority list and returns the first backend with a usable
// credential (for ollama, a configured base URL). It returns
// ErrNoProviderConfigured when nothing qualifies; the caller is expected to
// run the deterministic fallback classifier in that case.
func Select(ctx context.Context, priority []string, opts map[string]Options) (domain.Provider, error) {
	for _, name := range priority {
		o, ok := opts[name]
		if !ok {
			continue
		}
		if !configured(name, o) {
			continue
		}

		switch name {
		case "openai":
			return NewOpenAI(o)
		case "anthropic":
			return NewAnthropic(o)
		case "google":
			return NewGoogle(ctx, o)
		case "ollama":
			return NewOllama(o)
		case "custom":
			return NewCustom(o)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}
	}
	return nil, ErrNoProviderConfigured
}

// Available lists the names from the priority list that have a usable
// configuration, in priority order.
func Available(priority []string, opts map[string]Options) []string {
	var out []string
	for _, name := range priority {
		if o, ok := opts[name]; ok && configured(name, o) {
			out = append(out, name)
		}
	}
	return out
}

func configured(name string, o Options) bool {
	switch name {
	case "ollama":
		return o.BaseURL != ""
	case "custom":
		return o.APIKey != "" && o.BaseURL != ""
	default:
		return o.APIKey != ""
	}
}
