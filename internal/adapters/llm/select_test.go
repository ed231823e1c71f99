package llm_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/healthai/triage-agent/internal/adapters/llm"
)

var priority = []string{"openai", "anthropic", "google", "ollama", "custom"}

func TestSelectPriorityOrder(t *testing.T) {
	opts := map[string]llm.Options{
		"openai":    {APIKey: "sk-test"},
		"anthropic": {APIKey: "ant-test"},
	}

	p, err := llm.Select(context.Background(), priority, opts)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if p.Name() != "openai" {
		t.Fatalf("expected openai to win on priority, got %s", p.Name())
	}
}

func TestSelectSkipsUnconfigured(t *testing.T) {
	opts := map[string]llm.Options{
		"openai":    {},
		"anthropic": {APIKey: "ant-test"},
	}

	p, err := llm.Select(context.Background(), priority, opts)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Fatalf("expected anthropic, got %s", p.Name())
	}
}

func TestSelectOllamaNeedsBaseURL(t *testing.T) {
	opts := map[string]llm.Options{
		"ollama": {BaseURL: "http://localhost:11434"},
	}

	p, err := llm.Select(context.Background(), priority, opts)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if p.Name() != "ollama" {
		t.Fatalf("expected ollama, got %s", p.Name())
	}

	// An API key alone does not make ollama usable.
	_, err = llm.Select(context.Background(), priority, map[string]llm.Options{
		"ollama": {APIKey: "irrelevant"},
	})
	if !errors.Is(err, llm.ErrNoProviderConfigured) {
		t.Fatalf("expected ErrNoProviderConfigured, got %v", err)
	}
}

func TestSelectCustomNeedsKeyAndURL(t *testing.T) {
	_, err := llm.Select(context.Background(), priority, map[string]llm.Options{
		"custom": {APIKey: "token"},
	})
	if !errors.Is(err, llm.ErrNoProviderConfigured) {
		t.Fatalf("expected ErrNoProviderConfigured without a base URL, got %v", err)
	}

	p, err := llm.Select(context.Background(), priority, map[string]llm.Options{
		"custom": {APIKey: "token", BaseURL: "https://llm.internal/generate"},
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if p.Name() != "custom" {
		t.Fatalf("expected custom, got %s", p.Name())
	}
}

func TestSelectNothingConfigured(t *testing.T) {
	_, err := llm.Select(context.Background(), priority, map[string]llm.Options{})
	if !errors.Is(err, llm.ErrNoProviderConfigured) {
		t.Fatalf("expected ErrNoProviderConfigured, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	opts := map[string]llm.Options{
		"openai": {APIKey: "sk-test"},
		"ollama": {BaseURL: "http://localhost:11434"},
		"custom": {APIKey: "token"},
	}

	got := llm.Available(priority, opts)
	want := []string{"openai", "ollama"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
