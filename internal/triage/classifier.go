package triage

import (
	"context"
	"strings"

	"github.com/healthai/triage-agent/internal/domain"
	"github.com/healthai/triage-agent/internal/observability"
)

// FallbackQuestions are returned when no provider can generate follow-ups.
var FallbackQuestions = []string{
	"How long have you been experiencing these symptoms?",
	"Have you had similar symptoms before?",
	"Are you currently taking any medications?",
	"Have you noticed any triggers that make symptoms worse?",
	"Are there any other symptoms you're experiencing?",
}

const maxFollowUpQuestions = 5

// Classifier is the single entry point for symptom assessment. It delegates
// to a text-generation provider when one is configured and falls back to the
// deterministic keyword classifier otherwise. Errors never escape: every
// failure degrades into a valid, safety-biased result.
type Classifier struct {
	provider  domain.Provider // nil when nothing is configured
	fallback  *KeywordClassifier
	prompts   *PromptBuilder
	threshold float64
}

// New builds a classifier. provider may be nil; fallback and prompts must not
// be, but nil values are replaced with defaults so the classifier can always
// produce a result.
func New(provider domain.Provider, fallback *KeywordClassifier, prompts *PromptBuilder, threshold float64) *Classifier {
	if fallback == nil {
		fallback = NewKeywordClassifier(nil, nil)
	}
	if prompts == nil {
		prompts = NewPromptBuilder(0)
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.70
	}
	return &Classifier{
		provider:  provider,
		fallback:  fallback,
		prompts:   prompts,
		threshold: threshold,
	}
}

// Classify produces exactly one triage result for the request. The provider
// path and the fallback path both pass through the low-confidence escalation
// rule before the result is returned. Any panic inside the pipeline degrades
// to a fail-safe urgent result rather than propagating.
func (c *Classifier) Classify(ctx context.Context, req Request) (result domain.TriageResult) {
	log := observability.LoggerFromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("classification panicked, returning fail-safe result", "panic", r)
			result = failSafeResult()
		}
	}()

	if c.provider == nil {
		log.Info("no provider configured, using keyword fallback")
		return c.escalate(c.fallback.Classify(req.Symptoms))
	}

	prompt := c.prompts.BuildAssessment(req)
	raw, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		log.Warn("provider call failed, using keyword fallback",
			"provider", c.provider.Name(),
			"error", err,
		)
		return c.escalate(c.fallback.Classify(req.Symptoms))
	}

	result = ParseResponse(raw)
	log.Info("provider assessment parsed",
		"provider", c.provider.Name(),
		"priority", result.Priority,
		"risk_score", result.RiskScore,
		"confidence", result.Confidence,
	)
	return c.escalate(result)
}

// GenerateFollowUps returns up to five clarifying questions for the given
// symptoms. Provider failures degrade to a fixed generic list.
func (c *Classifier) GenerateFollowUps(ctx context.Context, symptoms string, convContext []string) []string {
	if c.provider == nil {
		return FallbackQuestions
	}

	raw, err := c.provider.Generate(ctx, c.prompts.BuildFollowUps(symptoms, convContext))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("follow-up generation failed",
			"provider", c.provider.Name(),
			"error", err,
		)
		return FallbackQuestions
	}

	questions := splitQuestions(raw)
	if len(questions) == 0 {
		return FallbackQuestions
	}
	return questions
}

// DetectRedFlags exposes the keyword alert scan on the classifier so callers
// need only one handle.
func (c *Classifier) DetectRedFlags(symptoms string) []domain.MedicalAlert {
	return DetectRedFlags(symptoms)
}

// escalate applies the cross-cutting safety override: a result below the
// confidence threshold that is not already an emergency is raised to at
// least urgent, with an uncertainty disclosure prepended.
func (c *Classifier) escalate(r domain.TriageResult) domain.TriageResult {
	if r.Confidence >= c.threshold || r.Priority == domain.PriorityEmergency {
		return r
	}

	if r.Priority == domain.PriorityNonUrgent {
		r.Priority = domain.PriorityUrgent
		if r.RiskScore < riskScoreUrgent {
			r.RiskScore = riskScoreUrgent
		}
	}

	r.Recommendations = append(
		[]string{"Consult a healthcare provider due to uncertainty in the automated analysis"},
		r.Recommendations...,
	)
	return SanitizeResult(r)
}

// failSafeResult is returned when classification breaks entirely. It errs far
// on the side of caution: the patient is told to seek care, not retried.
func failSafeResult() domain.TriageResult {
	return SanitizeResult(domain.TriageResult{
		Priority:  domain.PriorityUrgent,
		RiskScore: 75,
		Recommendations: []string{
			"Seek medical attention promptly",
			"Contact your healthcare provider or urgent care",
		},
		RedFlags:    []string{"Unable to complete AI analysis"},
		Confidence:  0.3,
		Explanation: "Analysis could not be completed. Recommending urgent evaluation as a precaution.",
		NextSteps:   []string{"Contact your healthcare provider today"},
	})
}

func splitQuestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxFollowUpQuestions {
			break
		}
	}
	return out
}
