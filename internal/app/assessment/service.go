package assessment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healthai/triage-agent/internal/domain"
	"github.com/healthai/triage-agent/internal/observability"
	"github.com/healthai/triage-agent/internal/triage"
)

const welcomeMessage = "Hello, I'm your symptom assessment assistant. Please describe what you're experiencing, including when it started and how severe it feels."

const historyLimit = 20

// Service orchestrates assessment sessions: it owns the state machine around
// the classifier but none of the persistence, which is injected.
type Service struct {
	classifier *triage.Classifier
	sessions   domain.SessionStore
	messages   domain.MessageStore
	users      domain.UserStore
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[domain.SessionID]struct{}
}

func NewService(
	classifier *triage.Classifier,
	sessions domain.SessionStore,
	messages domain.MessageStore,
	users domain.UserStore,
) *Service {
	return &Service{
		classifier: classifier,
		sessions:   sessions,
		messages:   messages,
		users:      users,
		now:        time.Now,
		inFlight:   make(map[domain.SessionID]struct{}),
	}
}

type StartSessionInput struct {
	UserID         domain.UserID
	ChiefComplaint string
}

type StartSessionOutput struct {
	Session *domain.Session
	Welcome *domain.ChatMessage
}

// StartSession creates a new active session and seeds its timeline with a
// welcome question.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()

	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
	)
	log.Info("starting assessment session")

	session := &domain.Session{
		ID:             domain.SessionID(uuid.NewString()),
		UserID:         in.UserID,
		Status:         domain.StatusActive,
		ChiefComplaint: in.ChiefComplaint,
		Priority:       domain.PriorityNonUrgent,
		StartTime:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.sessions.CreateSession(session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	welcome := &domain.ChatMessage{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Role:      domain.RoleAssistant,
		Type:      domain.TypeQuestion,
		Content:   welcomeMessage,
		CreatedAt: now,
	}

	if err := s.messages.AppendMessage(welcome); err != nil {
		log.Error("failed to append welcome message", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)

	return &StartSessionOutput{
		Session: session,
		Welcome: welcome,
	}, nil
}

type SubmitSymptomsInput struct {
	SessionID domain.SessionID
	Text      string
}

type SubmitSymptomsOutput struct {
	UserMessage *domain.ChatMessage
	Assessment  *domain.ChatMessage
	Result      domain.TriageResult
}

// SubmitSymptoms appends the user's description, runs one classification
// cycle, records the outcome on the timeline and completes the session.
// Classification itself cannot fail; only persistence errors surface.
func (s *Service) SubmitSymptoms(ctx context.Context, in SubmitSymptomsInput) (*SubmitSymptomsOutput, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptySymptoms
	}

	if err := s.acquire(in.SessionID); err != nil {
		return nil, err
	}
	defer s.release(in.SessionID)

	session, err := s.sessions.GetSession(in.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.StatusAbandoned {
		return nil, ErrSessionAbandoned
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"user_id", session.UserID,
	)
	log.Info("submitting symptoms")

	now := s.now()

	userMsg := &domain.ChatMessage{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Type:      domain.TypeAnswer,
		Content:   in.Text,
		CreatedAt: now,
	}
	if err := s.messages.AppendMessage(userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	req, err := s.buildRequest(session, in.Text)
	if err != nil {
		log.Error("failed to build assessment request", "error", err)
		return nil, err
	}

	result := s.classifier.Classify(ctx, req)

	assessMsg, err := s.recordResult(session, result)
	if err != nil {
		log.Error("failed to record result", "error", err)
		return nil, err
	}

	log.Info("assessment completed",
		"priority", result.Priority,
		"risk_score", result.RiskScore,
		"confidence", result.Confidence,
	)

	return &SubmitSymptomsOutput{
		UserMessage: userMsg,
		Assessment:  assessMsg,
		Result:      result,
	}, nil
}

// FollowUpQuestions generates up to five clarifying questions for an active
// or completed session.
func (s *Service) FollowUpQuestions(ctx context.Context, sessionID domain.SessionID) ([]string, error) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.StatusAbandoned {
		return nil, ErrSessionAbandoned
	}

	history, err := s.conversationHistory(sessionID)
	if err != nil {
		return nil, err
	}

	symptoms := session.ChiefComplaint
	for i := len(history) - 1; i >= 0; i-- {
		if strings.HasPrefix(history[i], "user: ") {
			symptoms = strings.TrimPrefix(history[i], "user: ")
			break
		}
	}

	return s.classifier.GenerateFollowUps(ctx, symptoms, history), nil
}

// AbandonSession moves an active session to the terminal abandoned state.
func (s *Service) AbandonSession(ctx context.Context, sessionID domain.SessionID) error {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status != domain.StatusActive {
		return ErrSessionNotActive
	}

	now := s.now()
	session.Status = domain.StatusAbandoned
	session.EndTime = &now
	session.UpdatedAt = now

	if err := s.sessions.UpdateSession(session); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info("session abandoned", "session_id", sessionID)
	return nil
}

// GetSessionTimeline returns a session and up to `limit` of its newest
// messages in chronological order.
func (s *Service) GetSessionTimeline(ctx context.Context, sessionID domain.SessionID, limit int) (*domain.Session, []*domain.ChatMessage, error) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := s.messages.GetMessagesBySession(sessionID, limit)
	if err != nil {
		return nil, nil, err
	}

	return session, msgs, nil
}

// ListUserSessions returns a user's sessions.
func (s *Service) ListUserSessions(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	return s.sessions.ListSessionsByUser(userID, limit)
}

// DetectRedFlags scans free text for critical symptom phrases without
// touching any session.
func (s *Service) DetectRedFlags(symptoms string) []domain.MedicalAlert {
	return s.classifier.DetectRedFlags(symptoms)
}

// acquire enforces the one-in-flight-classification-per-session invariant.
func (s *Service) acquire(id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return ErrAssessmentInFlight
	}
	s.inFlight[id] = struct{}{}
	return nil
}

func (s *Service) release(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// buildRequest assembles the patient context for the classifier. A missing
// profile is not an error: classification proceeds with what is known.
func (s *Service) buildRequest(session *domain.Session, symptoms string) (triage.Request, error) {
	req := triage.Request{
		Symptoms: symptoms,
		Gender:   "unknown",
	}

	if s.users != nil {
		if user, err := s.users.GetUser(session.UserID); err == nil {
			req.Age = user.AgeAt(s.now())
			req.Gender = user.Gender
			req.MedicalHistory = user.MedicalHistory
		}
	}

	history, err := s.conversationHistory(session.ID)
	if err != nil {
		return triage.Request{}, err
	}
	req.ConversationHistory = history

	return req, nil
}

func (s *Service) conversationHistory(sessionID domain.SessionID) ([]string, error) {
	msgs, err := s.messages.GetMessagesBySession(sessionID, historyLimit)
	if err != nil {
		return nil, err
	}

	var history []string
	for _, m := range msgs {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		history = append(history, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return history, nil
}

// recordResult appends the assessment, recommendation and (for emergencies)
// alert messages, then folds the result into the session and completes it.
func (s *Service) recordResult(session *domain.Session, result domain.TriageResult) (*domain.ChatMessage, error) {
	now := s.now()
	confidence := result.Confidence

	assessMsg := &domain.ChatMessage{
		ID:         domain.MessageID(uuid.NewString()),
		SessionID:  session.ID,
		Role:       domain.RoleAssistant,
		Type:       domain.TypeAssessment,
		Content:    result.Explanation,
		Confidence: &confidence,
		CreatedAt:  now,
	}
	if err := s.messages.AppendMessage(assessMsg); err != nil {
		return nil, err
	}

	recMsg := &domain.ChatMessage{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Role:      domain.RoleAssistant,
		Type:      domain.TypeRecommendation,
		Content:   strings.Join(result.Recommendations, "; "),
		CreatedAt: now,
	}
	if err := s.messages.AppendMessage(recMsg); err != nil {
		return nil, err
	}

	if result.Priority == domain.PriorityEmergency {
		alertMsg := &domain.ChatMessage{
			ID:        domain.MessageID(uuid.NewString()),
			SessionID: session.ID,
			Role:      domain.RoleSystem,
			Type:      domain.TypeAlert,
			Content:   "Emergency symptoms detected. Call 911 or go to the nearest emergency room.",
			CreatedAt: now,
		}
		if err := s.messages.AppendMessage(alertMsg); err != nil {
			return nil, err
		}
	}

	session.Status = domain.StatusCompleted
	session.RiskScore = result.RiskScore
	session.Priority = result.Priority
	session.AIAnalysis = result.Explanation
	session.Recommendations = result.Recommendations
	session.RedFlags = result.RedFlags
	session.FollowUpRequired = result.Priority != domain.PriorityNonUrgent
	session.EndTime = &now
	session.UpdatedAt = now

	if err := s.sessions.UpdateSession(session); err != nil {
		return nil, err
	}

	return assessMsg, nil
}
