package triage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/healthai/triage-agent/internal/adapters/llm"
	"github.com/healthai/triage-agent/internal/domain"
	"github.com/healthai/triage-agent/internal/triage"
)

func TestClassifyProviderPath(t *testing.T) {
	provider := &llm.MockProvider{
		Reply: `{"priority": "urgent", "risk_score": 70, "confidence": 0.9, "explanation": "Fever pattern."}`,
	}
	c := triage.New(provider, nil, nil, 0.70)

	result := c.Classify(context.Background(), triage.Request{Symptoms: "fever for three days"})

	if result.Priority != domain.PriorityUrgent {
		t.Fatalf("expected urgent, got %s", result.Priority)
	}
	if len(provider.Calls) != 1 {
		t.Fatalf("expected exactly one provider call, got %d", len(provider.Calls))
	}
	if !strings.Contains(provider.Calls[0], "fever for three days") {
		t.Fatalf("prompt must contain the symptoms, got: %s", provider.Calls[0])
	}
}

func TestClassifyProviderErrorFallsBack(t *testing.T) {
	provider := &llm.MockProvider{Err: errors.New("upstream unavailable")}
	c := triage.New(provider, nil, nil, 0.70)

	result := c.Classify(context.Background(), triage.Request{Symptoms: "sudden chest pain"})

	if result.Priority != domain.PriorityEmergency {
		t.Fatalf("fallback must classify chest pain as emergency, got %s", result.Priority)
	}
}

func TestClassifyNilProviderUsesFallback(t *testing.T) {
	c := triage.New(nil, nil, nil, 0.70)

	result := c.Classify(context.Background(), triage.Request{Symptoms: "mild sore throat"})

	if result.Priority != domain.PriorityNonUrgent {
		t.Fatalf("expected non_urgent from fallback, got %s", result.Priority)
	}
	if result.MedicalDisclaimer == "" {
		t.Fatalf("every result must carry a disclaimer")
	}
}

func TestClassifyLowConfidenceEscalates(t *testing.T) {
	provider := &llm.MockProvider{
		Reply: `{"priority": "non_urgent", "risk_score": 20, "confidence": 0.4, "recommendations": ["Rest"]}`,
	}
	c := triage.New(provider, nil, nil, 0.70)

	result := c.Classify(context.Background(), triage.Request{Symptoms: "vague discomfort"})

	if result.Priority != domain.PriorityUrgent {
		t.Fatalf("low-confidence non_urgent must be raised to urgent, got %s", result.Priority)
	}
	if result.RiskScore < 65 {
		t.Fatalf("escalated risk score must be at least 65, got %d", result.RiskScore)
	}
	if !strings.Contains(result.Recommendations[0], "uncertainty") {
		t.Fatalf("escalation must prepend the uncertainty recommendation, got %v", result.Recommendations)
	}
}

func TestClassifyHighConfidenceNotEscalated(t *testing.T) {
	provider := &llm.MockProvider{
		Reply: `{"priority": "non_urgent", "risk_score": 20, "confidence": 0.95, "recommendations": ["Rest"]}`,
	}
	c := triage.New(provider, nil, nil, 0.70)

	result := c.Classify(context.Background(), triage.Request{Symptoms: "mild headache"})

	if result.Priority != domain.PriorityNonUrgent {
		t.Fatalf("confident non_urgent must stay non_urgent, got %s", result.Priority)
	}
}

func TestClassifyEmergencyNeverTouchedByEscalation(t *testing.T) {
	provider := &llm.MockProvider{
		Reply: `{"priority": "emergency", "risk_score": 90, "confidence": 0.3, "recommendations": ["Call 911"]}`,
	}
	c := triage.New(provider, nil, nil, 0.70)

	result := c.Classify(context.Background(), triage.Request{Symptoms: "collapsed"})

	if result.Priority != domain.PriorityEmergency {
		t.Fatalf("emergency must never be reclassified, got %s", result.Priority)
	}
	if result.Recommendations[0] != "Call 911" {
		t.Fatalf("emergency recommendations must be untouched, got %v", result.Recommendations)
	}
}

type panickyProvider struct{}

func (panickyProvider) Name() string { return "panicky" }

func (panickyProvider) Generate(ctx context.Context, prompt string) (string, error) {
	panic("boom")
}

func TestClassifyPanicDegradesToFailSafe(t *testing.T) {
	c := triage.New(panickyProvider{}, nil, nil, 0.70)

	result := c.Classify(context.Background(), triage.Request{Symptoms: "anything"})

	if result.Priority != domain.PriorityUrgent {
		t.Fatalf("fail-safe result must be urgent, got %s", result.Priority)
	}
	if result.RiskScore != 75 {
		t.Fatalf("fail-safe risk score must be 75, got %d", result.RiskScore)
	}
	if len(result.RedFlags) == 0 || !strings.Contains(result.RedFlags[0], "Unable to complete") {
		t.Fatalf("fail-safe must flag the incomplete analysis, got %v", result.RedFlags)
	}
}

func TestGenerateFollowUps(t *testing.T) {
	provider := &llm.MockProvider{
		Reply: "1. How long has this lasted?\n2. Any fever?\n\n3) Does anything make it worse?",
	}
	c := triage.New(provider, nil, nil, 0.70)

	questions := c.GenerateFollowUps(context.Background(), "stomach ache", nil)

	want := []string{
		"How long has this lasted?",
		"Any fever?",
		"Does anything make it worse?",
	}
	if len(questions) != len(want) {
		t.Fatalf("expected %d questions, got %d: %v", len(want), len(questions), questions)
	}
	for i := range want {
		if questions[i] != want[i] {
			t.Fatalf("question %d: expected %q, got %q", i, want[i], questions[i])
		}
	}
}

func TestGenerateFollowUpsCapped(t *testing.T) {
	provider := &llm.MockProvider{
		Reply: "q1\nq2\nq3\nq4\nq5\nq6\nq7",
	}
	c := triage.New(provider, nil, nil, 0.70)

	questions := c.GenerateFollowUps(context.Background(), "stomach ache", nil)

	if len(questions) != 5 {
		t.Fatalf("follow-up questions must be capped at 5, got %d", len(questions))
	}
}

func TestGenerateFollowUpsFallback(t *testing.T) {
	cases := map[string]*llm.MockProvider{
		"provider error": {Err: errors.New("timeout")},
		"empty reply":    {Reply: "\n\n"},
	}

	for name, provider := range cases {
		c := triage.New(provider, nil, nil, 0.70)
		questions := c.GenerateFollowUps(context.Background(), "stomach ache", nil)
		if len(questions) != len(triage.FallbackQuestions) {
			t.Fatalf("%s: expected fallback questions, got %v", name, questions)
		}
	}

	c := triage.New(nil, nil, nil, 0.70)
	if got := c.GenerateFollowUps(context.Background(), "stomach ache", nil); len(got) != len(triage.FallbackQuestions) {
		t.Fatalf("nil provider: expected fallback questions, got %v", got)
	}
}
