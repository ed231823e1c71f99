package domain

import "time"

type SessionID string
type UserID string
type MessageID string

// Priority is the triage outcome for a set of symptoms.
type Priority string

const (
	PriorityEmergency Priority = "emergency"
	PriorityUrgent    Priority = "urgent"
	PriorityNonUrgent Priority = "non_urgent"
)

// ValidPriority reports whether p is one of the three enumerated levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityEmergency, PriorityUrgent, PriorityNonUrgent:
		return true
	}
	return false
}

// SessionStatus tracks the lifecycle of an assessment conversation.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"    // accepting symptom input
	StatusCompleted SessionStatus = "completed" // an assessment has been produced
	StatusAbandoned SessionStatus = "abandoned" // user left without a result
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// MessageType classifies what a chat message carries.
type MessageType string

const (
	TypeQuestion       MessageType = "question"
	TypeAnswer         MessageType = "answer"
	TypeAssessment     MessageType = "assessment"
	TypeRecommendation MessageType = "recommendation"
	TypeAlert          MessageType = "alert"
)

type Timestamp = time.Time
