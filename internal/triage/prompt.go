package triage

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Request carries everything one assessment needs to know about the patient.
type Request struct {
	Symptoms            string
	Age                 int
	Gender              string
	MedicalHistory      []string
	ConversationHistory []string
}

const assessmentPromptTemplate = `You are a medical AI assistant designed to analyze symptoms and provide preliminary health guidance.

IMPORTANT SAFETY RULES:
1. ALWAYS prioritize patient safety
2. If ANY emergency symptoms are mentioned, immediately classify as EMERGENCY
3. Be conservative in risk assessment
4. Always recommend professional medical consultation
5. Never provide definitive diagnoses
6. Always include medical disclaimers

PATIENT INFORMATION:
- Age: %d years
- Gender: %s
- Medical History: %s
- Current Symptoms: %s
- Conversation History: %s

EMERGENCY SYMPTOMS (immediate classification):
- Chest pain, pressure, or tightness
- Severe difficulty breathing
- Severe bleeding
- Loss of consciousness
- Severe head injury
- Paralysis or weakness
- Severe allergic reactions

URGENT SYMPTOMS (within 24 hours):
- High fever (>103°F/39.4°C)
- Severe pain
- Persistent vomiting/diarrhea
- Signs of infection
- Sudden vision changes

Please analyze the symptoms and provide a structured response in the following JSON format:

{
  "priority": "emergency|urgent|non_urgent",
  "risk_score": 0-100,
  "recommendations": ["array of specific recommendations"],
  "red_flags": ["array of concerning symptoms"],
  "confidence": 0.0-1.0,
  "explanation": "detailed explanation of analysis",
  "next_steps": ["immediate actions to take"],
  "follow_up_questions": ["questions to better understand symptoms"],
  "medical_disclaimer": "standard medical disclaimer"
}

Focus on safety and always err on the side of caution.`

const followUpPromptTemplate = `Based on these symptoms: %q and the conversation so far, generate 3-5 follow-up questions to better understand the patient's condition.

Context:
%s

Questions should be:
- Medically relevant
- Easy to understand
- Focused on timing, severity, triggers, and associated symptoms

Return only the questions, one per line, without numbering.`

// PromptBuilder renders deterministic prompts, token-budgeting the embedded
// conversation history so the newest turns always survive.
type PromptBuilder struct {
	encoding *tiktoken.Tiktoken
	budget   int
}

// NewPromptBuilder creates a builder with the given history token budget.
// The cl100k_base encoding is fetched lazily by tiktoken; when it cannot be
// loaded (offline environments) a byte-length estimate is used instead.
func NewPromptBuilder(budget int) *PromptBuilder {
	if budget <= 0 {
		budget = 1500
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &PromptBuilder{encoding: enc, budget: budget}
}

// BuildAssessment renders the classification prompt for one request.
func (b *PromptBuilder) BuildAssessment(req Request) string {
	history := "None"
	if trimmed := b.trimHistory(req.ConversationHistory); len(trimmed) > 0 {
		history = strings.Join(trimmed, " | ")
	}

	medicalHistory := "None reported"
	if len(req.MedicalHistory) > 0 {
		medicalHistory = strings.Join(req.MedicalHistory, ", ")
	}

	return fmt.Sprintf(assessmentPromptTemplate,
		req.Age,
		req.Gender,
		medicalHistory,
		req.Symptoms,
		history,
	)
}

// BuildFollowUps renders the follow-up question prompt.
func (b *PromptBuilder) BuildFollowUps(symptoms string, context []string) string {
	ctx := "None"
	if trimmed := b.trimHistory(context); len(trimmed) > 0 {
		ctx = strings.Join(trimmed, "\n")
	}
	return fmt.Sprintf(followUpPromptTemplate, symptoms, ctx)
}

// trimHistory drops the oldest turns until the remainder fits the budget.
func (b *PromptBuilder) trimHistory(history []string) []string {
	if len(history) == 0 {
		return nil
	}

	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		// Per-turn overhead for role and separators, as with chat encodings.
		cost := b.countTokens(history[i]) + 4
		if total+cost > b.budget {
			break
		}
		total += cost
		start = i
	}

	if start == len(history) {
		// Even the newest turn is over budget; keep it anyway rather than
		// sending an empty history.
		start = len(history) - 1
	}
	return history[start:]
}

func (b *PromptBuilder) countTokens(text string) int {
	if b.encoding != nil {
		return len(b.encoding.Encode(text, nil, nil))
	}
	// Rough fallback: ~4 bytes per token for English text.
	return len(text)/4 + 1
}
