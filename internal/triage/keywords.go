package triage

import (
	"fmt"
	"strings"

	"github.com/healthai/triage-agent/internal/domain"
)

// Canonical scoring constants. Emergency keyword presence always dominates
// urgent; absence of both yields non-urgent. The ordering is the one
// safety-critical rule in this package: never under-triage.
const (
	riskScoreEmergency = 85
	riskScoreUrgent    = 65
	riskScoreNonUrgent = 25
)

// DefaultEmergencyKeywords are the phrases that force an emergency
// classification in the deterministic fallback.
var DefaultEmergencyKeywords = []string{
	"chest pain", "pressure", "tightness", "squeezing",
	"difficulty breathing", "shortness of breath", "can't breathe",
	"severe bleeding", "unconscious", "passed out", "fainted",
	"paralysis", "weakness", "numbness", "slurred speech",
}

// DefaultUrgentKeywords mark symptoms that should be seen within 24 hours.
var DefaultUrgentKeywords = []string{
	"fever", "high temperature", "severe pain", "intense pain",
	"dizziness", "lightheaded", "vomiting", "diarrhea",
	"infection", "swelling", "redness", "warm to touch",
}

// redFlagKeywords drive the standalone alert scan, independent of a full
// assessment.
var redFlagKeywords = []string{
	"chest pain", "severe headache", "difficulty breathing", "shortness of breath",
	"sudden weakness", "slurred speech", "severe abdominal pain", "high fever",
	"loss of consciousness", "severe bleeding", "severe burn", "poisoning",
	"suicide", "self-harm", "stroke symptoms", "heart attack",
}

// KeywordClassifier produces a triage result with no external dependency.
// It is used when no provider is configured, a provider call fails, or the
// provider's reply cannot be trusted.
type KeywordClassifier struct {
	emergency []string
	urgent    []string
}

// NewKeywordClassifier builds a fallback classifier. Nil or empty lists fall
// back to the defaults above.
func NewKeywordClassifier(emergency, urgent []string) *KeywordClassifier {
	if len(emergency) == 0 {
		emergency = DefaultEmergencyKeywords
	}
	if len(urgent) == 0 {
		urgent = DefaultUrgentKeywords
	}
	return &KeywordClassifier{emergency: emergency, urgent: urgent}
}

// Classify scans the lowercased symptom text against the emergency and urgent
// keyword sets, in that order of precedence.
func (c *KeywordClassifier) Classify(symptoms string) domain.TriageResult {
	text := strings.ToLower(symptoms)

	if matched := matchKeywords(text, c.emergency); len(matched) > 0 {
		// Confidence grows with the number of independent matches.
		confidence := 0.5 + 0.1*float64(len(matched)-1)
		if confidence > 0.9 {
			confidence = 0.9
		}
		return SanitizeResult(domain.TriageResult{
			Priority:  domain.PriorityEmergency,
			RiskScore: riskScoreEmergency,
			Recommendations: []string{
				"Seek immediate emergency medical care",
				"Call 911 or go to nearest emergency room",
				"Do not delay treatment",
			},
			RedFlags:   matched,
			Confidence: confidence,
			Explanation: fmt.Sprintf(
				"Analysis based on reported symptoms: %s. Emergency symptoms detected requiring immediate care.",
				symptoms),
			NextSteps: []string{
				"Call 911 or go to nearest emergency room",
				"Do not delay treatment",
			},
			MedicalDisclaimer: defaultDisclaimer,
		})
	}

	if matched := matchKeywords(text, c.urgent); len(matched) > 0 {
		return SanitizeResult(domain.TriageResult{
			Priority:  domain.PriorityUrgent,
			RiskScore: riskScoreUrgent,
			Recommendations: []string{
				"Seek medical attention within 24 hours",
				"Monitor symptoms closely",
				"Contact healthcare provider",
			},
			RedFlags:   matched,
			Confidence: 0.6,
			Explanation: fmt.Sprintf(
				"Analysis based on reported symptoms: %s. Urgent symptoms requiring prompt medical attention.",
				symptoms),
			NextSteps: []string{
				"Contact your healthcare provider today",
				"Monitor symptoms closely",
			},
			MedicalDisclaimer: defaultDisclaimer,
		})
	}

	return SanitizeResult(domain.TriageResult{
		Priority:  domain.PriorityNonUrgent,
		RiskScore: riskScoreNonUrgent,
		Recommendations: []string{
			"Monitor symptoms",
			"Rest and hydrate",
			"Contact healthcare provider if symptoms persist",
		},
		RedFlags:   nil,
		Confidence: 0.7,
		Explanation: fmt.Sprintf(
			"Analysis based on reported symptoms: %s. Non-urgent symptoms that can be monitored.",
			symptoms),
		NextSteps: []string{
			"Monitor symptoms",
			"Contact healthcare provider if symptoms persist or worsen",
		},
		MedicalDisclaimer: defaultDisclaimer,
	})
}

// DetectRedFlags scans free text for critical symptom phrases and raises one
// alert per match. It never calls out to a provider.
func DetectRedFlags(symptoms string) []domain.MedicalAlert {
	text := strings.ToLower(symptoms)

	var alerts []domain.MedicalAlert
	for _, keyword := range redFlagKeywords {
		if strings.Contains(text, keyword) {
			alerts = append(alerts, domain.MedicalAlert{
				Type:           domain.AlertEmergency,
				Message:        fmt.Sprintf("Critical symptom detected: %s", keyword),
				ActionRequired: "Seek immediate emergency medical attention",
				Confidence:     0.95,
			})
		}
	}
	return alerts
}

func matchKeywords(text string, keywords []string) []string {
	var matched []string
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			matched = append(matched, keyword)
		}
	}
	return matched
}
