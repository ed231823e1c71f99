package triage

import (
	"encoding/json"
	"strings"

	"github.com/healthai/triage-agent/internal/domain"
	"github.com/healthai/triage-agent/internal/observability"
)

const (
	defaultDisclaimer     = "This analysis is for informational purposes only and should not replace professional medical advice."
	defaultExplanation    = "Analysis completed based on reported symptoms"
	defaultRecommendation = "Consult a healthcare provider"

	defaultRiskScore  = 50
	defaultConfidence = 0.7
)

// ParseResponse coerces a provider's raw reply into a triage result. It first
// looks for an embedded JSON object; failing that it falls back to a keyword
// scan over the prose. It never fails: the caller always gets a well-formed,
// sanitized result.
func ParseResponse(raw string) domain.TriageResult {
	if obj, ok := extractJSON(raw); ok {
		var m map[string]any
		if err := json.Unmarshal([]byte(obj), &m); err == nil {
			return sanitizeParsed(m)
		}
	}
	return parseProse(raw)
}

// extractJSON returns the first top-level JSON object embedded in text: from
// the first '{' through its balanced closing '}', skipping braces inside
// string literals.
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// sanitizeParsed maps a loosely decoded provider object onto the result
// schema, substituting safe defaults for anything missing or malformed.
func sanitizeParsed(m map[string]any) domain.TriageResult {
	r := domain.TriageResult{}

	priority := domain.Priority(stringField(m, "priority"))
	if !domain.ValidPriority(priority) {
		priority = domain.PriorityNonUrgent
	}
	r.Priority = priority

	if score, ok := numberField(m, "risk_score"); ok {
		r.RiskScore = int(score)
	} else {
		r.RiskScore = defaultRiskScore
	}

	if conf, ok := numberField(m, "confidence"); ok {
		r.Confidence = conf
	} else {
		r.Confidence = defaultConfidence
	}

	r.Recommendations = stringListField(m, "recommendations")
	r.RedFlags = stringListField(m, "red_flags")
	r.NextSteps = stringListField(m, "next_steps")
	r.FollowUpQuestions = stringListField(m, "follow_up_questions")
	r.Explanation = stringField(m, "explanation")
	r.MedicalDisclaimer = stringField(m, "medical_disclaimer")

	return SanitizeResult(r)
}

// SanitizeResult clamps ranges and fills defaults on a typed result. It is
// idempotent and never fails: the last line of defense before a result is
// surfaced to a session.
func SanitizeResult(r domain.TriageResult) domain.TriageResult {
	clamped := false

	if !domain.ValidPriority(r.Priority) {
		r.Priority = domain.PriorityNonUrgent
		clamped = true
	}

	if r.RiskScore < 0 {
		r.RiskScore = 0
		clamped = true
	} else if r.RiskScore > 100 {
		r.RiskScore = 100
		clamped = true
	}

	if r.Confidence < 0 {
		r.Confidence = 0
		clamped = true
	} else if r.Confidence > 1 {
		r.Confidence = 1
		clamped = true
	}

	if len(r.Recommendations) == 0 {
		r.Recommendations = []string{defaultRecommendation}
	}
	if len(r.NextSteps) == 0 {
		r.NextSteps = []string{"Monitor symptoms and consult healthcare provider"}
	}
	if r.Explanation == "" {
		r.Explanation = defaultExplanation
	}
	if r.MedicalDisclaimer == "" {
		r.MedicalDisclaimer = defaultDisclaimer
	}

	if clamped {
		observability.Logger().Warn("triage result sanitized",
			"priority", r.Priority,
			"risk_score", r.RiskScore,
			"confidence", r.Confidence,
		)
	}
	return r
}

// parseProse synthesizes a best-effort result from an unstructured reply.
func parseProse(raw string) domain.TriageResult {
	text := strings.ToLower(raw)

	priority := domain.PriorityNonUrgent
	riskScore := riskScoreNonUrgent

	switch {
	case strings.Contains(text, "emergency") || strings.Contains(text, "immediate") ||
		strings.Contains(text, "911") || strings.Contains(text, "call emergency"):
		priority = domain.PriorityEmergency
		riskScore = riskScoreEmergency
	case strings.Contains(text, "urgent") || strings.Contains(text, "soon") ||
		strings.Contains(text, "24 hours"):
		priority = domain.PriorityUrgent
		riskScore = riskScoreUrgent
	}

	var redFlags []string
	for _, keyword := range []string{"chest pain", "difficulty breathing", "severe bleeding", "unconscious"} {
		if strings.Contains(text, keyword) {
			redFlags = append(redFlags, keyword)
		}
	}

	return SanitizeResult(domain.TriageResult{
		Priority:          priority,
		RiskScore:         riskScore,
		Recommendations:   []string{"Consult a healthcare provider for proper evaluation"},
		RedFlags:          redFlags,
		Confidence:        0.6,
		Explanation:       defaultExplanation,
		NextSteps:         []string{"Monitor symptoms and seek medical attention if needed"},
		MedicalDisclaimer: defaultDisclaimer,
	})
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func numberField(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func stringListField(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []any:
		var out []string
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return list
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	}
	return nil
}
