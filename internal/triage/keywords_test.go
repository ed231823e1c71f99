package triage_test

import (
	"strings"
	"testing"

	"github.com/healthai/triage-agent/internal/domain"
	"github.com/healthai/triage-agent/internal/triage"
)

func TestKeywordClassifierEmergency(t *testing.T) {
	c := triage.NewKeywordClassifier(nil, nil)

	result := c.Classify("I have severe chest pain and can't breathe")

	if result.Priority != domain.PriorityEmergency {
		t.Fatalf("expected emergency priority, got %s", result.Priority)
	}
	if result.RiskScore < 80 {
		t.Fatalf("expected risk score >= 80 for emergency, got %d", result.RiskScore)
	}

	var chestPain, breathing bool
	for _, flag := range result.RedFlags {
		if flag == "chest pain" {
			chestPain = true
		}
		if strings.Contains(flag, "breath") {
			breathing = true
		}
	}
	if !chestPain || !breathing {
		t.Fatalf("expected chest pain and a breathing term among red flags, got %v", result.RedFlags)
	}
}

func TestKeywordClassifierEmergencyDominatesUrgent(t *testing.T) {
	c := triage.NewKeywordClassifier(nil, nil)

	// Both an urgent keyword (fever) and an emergency keyword (unconscious).
	result := c.Classify("high fever, now unconscious")

	if result.Priority != domain.PriorityEmergency {
		t.Fatalf("emergency keywords must dominate urgent ones, got %s", result.Priority)
	}
}

func TestKeywordClassifierUrgent(t *testing.T) {
	c := triage.NewKeywordClassifier(nil, nil)

	result := c.Classify("I have had a high temperature and vomiting since yesterday")

	if result.Priority != domain.PriorityUrgent {
		t.Fatalf("expected urgent priority, got %s", result.Priority)
	}
	if result.RiskScore < 50 || result.RiskScore >= 80 {
		t.Fatalf("expected urgent risk score in [50,80), got %d", result.RiskScore)
	}
}

func TestKeywordClassifierNonUrgent(t *testing.T) {
	c := triage.NewKeywordClassifier(nil, nil)

	result := c.Classify("I have a mild headache")

	if result.Priority != domain.PriorityNonUrgent {
		t.Fatalf("expected non_urgent priority, got %s", result.Priority)
	}
	if result.RiskScore >= 50 {
		t.Fatalf("expected non-urgent risk score < 50, got %d", result.RiskScore)
	}

	found := false
	for _, rec := range result.Recommendations {
		if strings.Contains(rec, "hydrate") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a rest-and-hydrate recommendation, got %v", result.Recommendations)
	}
}

func TestKeywordClassifierConfidenceGrowsWithMatches(t *testing.T) {
	c := triage.NewKeywordClassifier(nil, nil)

	one := c.Classify("sudden chest pain")
	three := c.Classify("chest pain with tightness and shortness of breath")

	if three.Confidence <= one.Confidence {
		t.Fatalf("expected confidence to grow with matches: one=%v three=%v",
			one.Confidence, three.Confidence)
	}
	if three.Confidence > 0.9 {
		t.Fatalf("fallback confidence must be capped at 0.9, got %v", three.Confidence)
	}
}

func TestKeywordClassifierCaseInsensitive(t *testing.T) {
	c := triage.NewKeywordClassifier(nil, nil)

	result := c.Classify("SEVERE BLEEDING from a cut")

	if result.Priority != domain.PriorityEmergency {
		t.Fatalf("matching must be case-insensitive, got %s", result.Priority)
	}
}

func TestKeywordClassifierCustomLists(t *testing.T) {
	c := triage.NewKeywordClassifier([]string{"glowing rash"}, []string{"itchy"})

	if got := c.Classify("a strange glowing rash appeared").Priority; got != domain.PriorityEmergency {
		t.Fatalf("custom emergency keyword not honored, got %s", got)
	}
	if got := c.Classify("my arm is itchy").Priority; got != domain.PriorityUrgent {
		t.Fatalf("custom urgent keyword not honored, got %s", got)
	}
}

func TestDetectRedFlags(t *testing.T) {
	alerts := triage.DetectRedFlags("crushing chest pain and difficulty breathing")

	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d: %v", len(alerts), alerts)
	}
	for _, a := range alerts {
		if a.Type != domain.AlertEmergency {
			t.Fatalf("expected emergency alert type, got %s", a.Type)
		}
		if a.Confidence != 0.95 {
			t.Fatalf("expected confidence 0.95, got %v", a.Confidence)
		}
	}
}

func TestDetectRedFlagsNone(t *testing.T) {
	if alerts := triage.DetectRedFlags("a runny nose"); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %v", alerts)
	}
}
