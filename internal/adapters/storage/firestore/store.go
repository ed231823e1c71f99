package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/healthai/triage-agent/internal/domain"
)

// Store backs all three repository ports with Firestore. Sessions live in a
// top-level collection with their messages in a subcollection; user profiles
// get their own collection.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given GCP project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) messageDoc(sessionID domain.SessionID, msgID domain.MessageID) *firestore.DocumentRef {
	return s.messagesCol(sessionID).Doc(string(msgID))
}

func (s *Store) usersCol() *firestore.CollectionRef {
	return s.client.Collection("users")
}

type sessionDoc struct {
	UserID           string     `firestore:"user_id"`
	Status           string     `firestore:"status"`
	ChiefComplaint   string     `firestore:"chief_complaint"`
	RiskScore        int        `firestore:"risk_score"`
	Priority         string     `firestore:"priority_level"`
	AIAnalysis       string     `firestore:"ai_analysis"`
	Recommendations  []string   `firestore:"recommendations"`
	RedFlags         []string   `firestore:"red_flags"`
	FollowUpRequired bool       `firestore:"follow_up_required"`
	StartTime        time.Time  `firestore:"start_time"`
	EndTime          *time.Time `firestore:"end_time"`
	CreatedAt        time.Time  `firestore:"created_at"`
	UpdatedAt        time.Time  `firestore:"updated_at"`
}

type messageDoc struct {
	SessionID  string    `firestore:"session_id"`
	Role       string    `firestore:"role"`
	Type       string    `firestore:"message_type"`
	Content    string    `firestore:"content"`
	Confidence *float64  `firestore:"confidence_score"`
	CreatedAt  time.Time `firestore:"created_at"`
}

type userDoc struct {
	Email            string    `firestore:"email"`
	FullName         string    `firestore:"full_name"`
	DateOfBirth      time.Time `firestore:"date_of_birth"`
	Gender           string    `firestore:"gender"`
	MedicalHistory   []string  `firestore:"medical_history"`
	Allergies        []string  `firestore:"allergies"`
	Medications      []string  `firestore:"medications"`
	ContactName      string    `firestore:"emergency_contact_name"`
	ContactPhone     string    `firestore:"emergency_contact_phone"`
	ContactRelation  string    `firestore:"emergency_contact_relationship"`
	CreatedAt        time.Time `firestore:"created_at"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

func toSessionDoc(session *domain.Session) sessionDoc {
	return sessionDoc{
		UserID:           string(session.UserID),
		Status:           string(session.Status),
		ChiefComplaint:   session.ChiefComplaint,
		RiskScore:        session.RiskScore,
		Priority:         string(session.Priority),
		AIAnalysis:       session.AIAnalysis,
		Recommendations:  session.Recommendations,
		RedFlags:         session.RedFlags,
		FollowUpRequired: session.FollowUpRequired,
		StartTime:        session.StartTime,
		EndTime:          session.EndTime,
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}
}

func (d sessionDoc) toDomain(id domain.SessionID) *domain.Session {
	return &domain.Session{
		ID:               id,
		UserID:           domain.UserID(d.UserID),
		Status:           domain.SessionStatus(d.Status),
		ChiefComplaint:   d.ChiefComplaint,
		RiskScore:        d.RiskScore,
		Priority:         domain.Priority(d.Priority),
		AIAnalysis:       d.AIAnalysis,
		Recommendations:  d.Recommendations,
		RedFlags:         d.RedFlags,
		FollowUpRequired: d.FollowUpRequired,
		StartTime:        d.StartTime,
		EndTime:          d.EndTime,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// SessionStore implementation

func (s *Store) CreateSession(session *domain.Session) error {
	ctx := context.Background()

	if _, err := s.sessionDoc(session.ID).Create(ctx, toSessionDoc(session)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.ErrSessionExists
		}
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(session *domain.Session) error {
	ctx := context.Background()

	if _, err := s.sessionDoc(session.ID).Set(ctx, toSessionDoc(session)); err != nil {
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(id domain.SessionID) (*domain.Session, error) {
	ctx := context.Background()

	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	return doc.toDomain(id), nil
}

func (s *Store) ListSessionsByUser(userID domain.UserID, limit int) ([]*domain.Session, error) {
	ctx := context.Background()

	q := s.sessionsCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListSessionsByUser: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}

		out = append(out, doc.toDomain(domain.SessionID(snap.Ref.ID)))
	}
	return out, nil
}

// MessageStore implementation

func (s *Store) AppendMessage(msg *domain.ChatMessage) error {
	ctx := context.Background()

	doc := messageDoc{
		SessionID:  string(msg.SessionID),
		Role:       string(msg.Role),
		Type:       string(msg.Type),
		Content:    msg.Content,
		Confidence: msg.Confidence,
		CreatedAt:  msg.CreatedAt,
	}

	if _, err := s.messageDoc(msg.SessionID, msg.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]*domain.ChatMessage, error) {
	ctx := context.Background()

	q := s.messagesCol(sessionID).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = q.LimitToLast(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.ChatMessage
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, &domain.ChatMessage{
			ID:         domain.MessageID(snap.Ref.ID),
			SessionID:  sessionID,
			Role:       domain.Role(doc.Role),
			Type:       domain.MessageType(doc.Type),
			Content:    doc.Content,
			Confidence: doc.Confidence,
			CreatedAt:  doc.CreatedAt,
		})
	}
	return out, nil
}

// UserStore implementation

func (s *Store) CreateUser(user *domain.User) error {
	ctx := context.Background()

	if _, err := s.usersCol().Doc(string(user.ID)).Create(ctx, toUserDoc(user)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.ErrUserExists
		}
		return fmt.Errorf("firestore CreateUser: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(user *domain.User) error {
	ctx := context.Background()

	if _, err := s.usersCol().Doc(string(user.ID)).Set(ctx, toUserDoc(user)); err != nil {
		return fmt.Errorf("firestore UpdateUser: %w", err)
	}
	return nil
}

func (s *Store) GetUser(id domain.UserID) (*domain.User, error) {
	ctx := context.Background()

	snap, err := s.usersCol().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("firestore GetUser: %w", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetUser decode: %w", err)
	}

	return &domain.User{
		ID:             id,
		Email:          doc.Email,
		FullName:       doc.FullName,
		DateOfBirth:    doc.DateOfBirth,
		Gender:         doc.Gender,
		MedicalHistory: doc.MedicalHistory,
		Allergies:      doc.Allergies,
		Medications:    doc.Medications,
		EmergencyContact: domain.EmergencyContact{
			Name:         doc.ContactName,
			Phone:        doc.ContactPhone,
			Relationship: doc.ContactRelation,
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func toUserDoc(user *domain.User) userDoc {
	return userDoc{
		Email:           user.Email,
		FullName:        user.FullName,
		DateOfBirth:     user.DateOfBirth,
		Gender:          user.Gender,
		MedicalHistory:  user.MedicalHistory,
		Allergies:       user.Allergies,
		Medications:     user.Medications,
		ContactName:     user.EmergencyContact.Name,
		ContactPhone:    user.EmergencyContact.Phone,
		ContactRelation: user.EmergencyContact.Relationship,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}
