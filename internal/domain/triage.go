package domain

// TriageResult is the structured outcome of one symptom assessment.
// Produced fresh per request and immutable once returned; risk score and
// confidence are always clamped to their declared ranges before a result
// leaves the classifier.
type TriageResult struct {
	Priority          Priority `json:"priority"`
	RiskScore         int      `json:"risk_score"`
	Recommendations   []string `json:"recommendations"`
	RedFlags          []string `json:"red_flags"`
	Confidence        float64  `json:"confidence"`
	Explanation       string   `json:"explanation"`
	NextSteps         []string `json:"next_steps"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`
	MedicalDisclaimer string   `json:"medical_disclaimer"`
}

// AlertType grades a red-flag alert.
type AlertType string

const (
	AlertEmergency AlertType = "emergency"
	AlertUrgent    AlertType = "urgent"
	AlertWarning   AlertType = "warning"
)

// MedicalAlert is raised when a critical symptom phrase is detected in
// free-text input, independently of a full assessment.
type MedicalAlert struct {
	Type           AlertType `json:"type"`
	Message        string    `json:"message"`
	ActionRequired string    `json:"action_required"`
	Confidence     float64   `json:"confidence"`
}
