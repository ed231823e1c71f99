package domain

// Session represents one assessment conversation between a user and the agent.
// It is mutated in place as each new triage result supersedes the previous one.
type Session struct {
	ID             SessionID
	UserID         UserID
	Status         SessionStatus
	ChiefComplaint string

	// Latest assessment outcome. Zero-valued until the first result lands.
	RiskScore       int
	Priority        Priority
	AIAnalysis      string
	Recommendations []string
	RedFlags        []string

	FollowUpRequired bool

	StartTime Timestamp
	EndTime   *Timestamp
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// ChatMessage is one entry in a session's append-only timeline.
type ChatMessage struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Type      MessageType
	Content   string

	// Confidence is only present on assessment messages.
	Confidence *float64

	CreatedAt Timestamp
}
