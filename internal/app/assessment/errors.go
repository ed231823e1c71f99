package assessment

import "errors"

var (
	// ErrAssessmentInFlight is returned when a session already has an
	// unresolved classification request. Every session gets at most one at
	// a time.
	ErrAssessmentInFlight = errors.New("assessment already in flight for session")

	// ErrSessionAbandoned is returned when input arrives for a session in
	// the terminal abandoned state.
	ErrSessionAbandoned = errors.New("session has been abandoned")

	// ErrSessionNotActive is returned when a lifecycle transition is asked
	// of a session that is not active.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrEmptySymptoms is returned when the submitted text is blank.
	ErrEmptySymptoms = errors.New("symptom text is required")
)
