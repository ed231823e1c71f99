package triage_test

import (
	"strings"
	"testing"

	"github.com/healthai/triage-agent/internal/triage"
)

func TestBuildAssessmentContainsPatientInfo(t *testing.T) {
	b := triage.NewPromptBuilder(1500)

	prompt := b.BuildAssessment(triage.Request{
		Symptoms:       "persistent cough",
		Age:            42,
		Gender:         "male",
		MedicalHistory: []string{"asthma", "hypertension"},
	})

	for _, want := range []string{
		"Age: 42 years",
		"Gender: male",
		"asthma, hypertension",
		"persistent cough",
		`"priority": "emergency|urgent|non_urgent"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildAssessmentEmptyHistory(t *testing.T) {
	b := triage.NewPromptBuilder(1500)

	prompt := b.BuildAssessment(triage.Request{Symptoms: "cough", Gender: "female"})

	if !strings.Contains(prompt, "Medical History: None reported") {
		t.Fatalf("expected 'None reported' for empty medical history:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Conversation History: None") {
		t.Fatalf("expected 'None' for empty conversation history:\n%s", prompt)
	}
}

func TestBuildAssessmentTrimsOldestHistory(t *testing.T) {
	b := triage.NewPromptBuilder(30)

	oldest := "user: this is the very first thing the patient said about their long history, " +
		"a meandering account of every ache and pain they have had over the last decade, " +
		"including several visits to different clinics and a long list of over-the-counter remedies"
	newest := "user: it hurts now"

	prompt := b.BuildAssessment(triage.Request{
		Symptoms:            "pain",
		ConversationHistory: []string{oldest, newest},
	})

	if strings.Contains(prompt, oldest) {
		t.Fatalf("oldest turn should have been trimmed out of a tight budget:\n%s", prompt)
	}
	if !strings.Contains(prompt, newest) {
		t.Fatalf("newest turn must always survive trimming:\n%s", prompt)
	}
}

func TestBuildAssessmentKeepsNewestEvenOverBudget(t *testing.T) {
	b := triage.NewPromptBuilder(1)

	newest := "user: a single turn that is far larger than a one-token budget could ever hold"

	prompt := b.BuildAssessment(triage.Request{
		Symptoms:            "pain",
		ConversationHistory: []string{newest},
	})

	if !strings.Contains(prompt, newest) {
		t.Fatalf("the newest turn must be kept even when over budget:\n%s", prompt)
	}
}

func TestBuildFollowUps(t *testing.T) {
	b := triage.NewPromptBuilder(1500)

	prompt := b.BuildFollowUps("stomach ache", []string{"user: it started yesterday"})

	if !strings.Contains(prompt, `"stomach ache"`) {
		t.Fatalf("follow-up prompt must quote the symptoms:\n%s", prompt)
	}
	if !strings.Contains(prompt, "user: it started yesterday") {
		t.Fatalf("follow-up prompt must include the context:\n%s", prompt)
	}
}
