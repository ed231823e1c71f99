package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/healthai/triage-agent/internal/app/assessment"
	"github.com/healthai/triage-agent/internal/domain"
)

type Server struct {
	svc       *assessment.Service
	providers []string
}

// NewServer wires the assessment service behind a REST surface. providers is
// the list of configured backend names, surfaced for service-status checks.
func NewServer(svc *assessment.Service, providers []string) http.Handler {
	s := &Server{svc: svc, providers: providers}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/providers", s.handleProviders)
	mux.HandleFunc("/redflags", s.handleRedFlags)

	// /sessions → create session (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}           → GET: session + timeline
	// /sessions/{id}/messages  → POST: submit symptoms
	// /sessions/{id}/abandon   → POST: abandon session
	// /sessions/{id}/questions → GET: follow-up questions
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	// /users/{id}/sessions → GET: session history
	mux.HandleFunc("/users/", s.handleUserWithID)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	UserID         string `json:"user_id"`
	ChiefComplaint string `json:"chief_complaint,omitempty"`
}

type createSessionResponse struct {
	Session sessionResponse  `json:"session"`
	Welcome *messageResponse `json:"welcome_message,omitempty"`
}

type sessionResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Status           string     `json:"status"`
	ChiefComplaint   string     `json:"chief_complaint"`
	RiskScore        int        `json:"risk_score"`
	PriorityLevel    string     `json:"priority_level"`
	AIAnalysis       string     `json:"ai_analysis,omitempty"`
	Recommendations  []string   `json:"recommendations,omitempty"`
	RedFlags         []string   `json:"red_flags,omitempty"`
	FollowUpRequired bool       `json:"follow_up_required"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Role       string    `json:"role"`
	Type       string    `json:"message_type"`
	Content    string    `json:"content"`
	Confidence *float64  `json:"confidence_score,omitempty"`
	CreatedAt  time.Time `json:"timestamp"`
}

type submitSymptomsRequest struct {
	Text string `json:"text"`
}

type submitSymptomsResponse struct {
	UserMessage messageResponse     `json:"user_message"`
	Assessment  messageResponse     `json:"assessment_message"`
	Result      domain.TriageResult `json:"result"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type questionsResponse struct {
	Questions []string `json:"questions"`
}

type redFlagsRequest struct {
	Symptoms string `json:"symptoms"`
}

type redFlagsResponse struct {
	Alerts []domain.MedicalAlert `json:"alerts"`
}

type providersResponse struct {
	Configured []string `json:"configured"`
	Fallback   string   `json:"fallback"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, providersResponse{
		Configured: s.providers,
		Fallback:   "keyword",
	})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}[/messages|/abandon|/questions]
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.SessionID(parts[0])
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 {
		switch {
		case parts[1] == "messages" && r.Method == http.MethodPost:
			s.handleSubmitSymptoms(w, r, id)
		case parts[1] == "abandon" && r.Method == http.MethodPost:
			s.handleAbandonSession(w, r, id)
		case parts[1] == "questions" && r.Method == http.MethodGet:
			s.handleFollowUpQuestions(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	http.NotFound(w, r)
}

// /users/{id}/sessions
func (s *Server) handleUserWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/users/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "sessions" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	sessions, err := s.svc.ListUserSessions(r.Context(), domain.UserID(parts[0]), 0)
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, map[string][]sessionResponse{"sessions": out})
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	out, err := s.svc.StartSession(r.Context(), assessment.StartSessionInput{
		UserID:         domain.UserID(req.UserID),
		ChiefComplaint: req.ChiefComplaint,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	resp := createSessionResponse{
		Session: toSessionResponse(out.Session),
	}
	if out.Welcome != nil {
		m := toMessageResponse(out.Welcome)
		resp.Welcome = &m
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, msgs, err := s.svc.GetSessionTimeline(r.Context(), id, 0)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	resp := getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitSymptoms(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	var req submitSymptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.svc.SubmitSymptoms(r.Context(), assessment.SubmitSymptomsInput{
		SessionID: sessionID,
		Text:      req.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			http.NotFound(w, r)
		case errors.Is(err, assessment.ErrEmptySymptoms):
			badRequest(w, "text is required")
		case errors.Is(err, assessment.ErrSessionAbandoned):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "session has been abandoned"})
		case errors.Is(err, assessment.ErrAssessmentInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "assessment already in progress"})
		default:
			internalError(w, err)
		}
		return
	}

	resp := submitSymptomsResponse{
		UserMessage: toMessageResponse(out.UserMessage),
		Assessment:  toMessageResponse(out.Assessment),
		Result:      out.Result,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	err := s.svc.AbandonSession(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			http.NotFound(w, r)
		case errors.Is(err, assessment.ErrSessionNotActive):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "session is not active"})
		default:
			internalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func (s *Server) handleFollowUpQuestions(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	questions, err := s.svc.FollowUpQuestions(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}

func (s *Server) handleRedFlags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req redFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Symptoms) == "" {
		badRequest(w, "symptoms is required")
		return
	}

	alerts := s.svc.DetectRedFlags(req.Symptoms)
	if alerts == nil {
		alerts = []domain.MedicalAlert{}
	}
	writeJSON(w, http.StatusOK, redFlagsResponse{Alerts: alerts})
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:               string(s.ID),
		UserID:           string(s.UserID),
		Status:           string(s.Status),
		ChiefComplaint:   s.ChiefComplaint,
		RiskScore:        s.RiskScore,
		PriorityLevel:    string(s.Priority),
		AIAnalysis:       s.AIAnalysis,
		Recommendations:  s.Recommendations,
		RedFlags:         s.RedFlags,
		FollowUpRequired: s.FollowUpRequired,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toMessageResponse(m *domain.ChatMessage) messageResponse {
	return messageResponse{
		ID:         string(m.ID),
		SessionID:  string(m.SessionID),
		Role:       string(m.Role),
		Type:       string(m.Type),
		Content:    m.Content,
		Confidence: m.Confidence,
		CreatedAt:  m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.ChatMessage) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
