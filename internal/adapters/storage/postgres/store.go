package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/healthai/triage-agent/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Store backs all three repository ports with Postgres.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool for the given DSN and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// migrate executes the idempotent statements in schema.sql.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SessionStore implementation

func (s *Store) CreateSession(session *domain.Session) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, user_id, status, chief_complaint, risk_score, priority_level,
		                       ai_analysis, recommendations, red_flags, follow_up_required,
		                       start_time, end_time, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		string(session.ID), string(session.UserID), string(session.Status), session.ChiefComplaint,
		session.RiskScore, string(session.Priority), session.AIAnalysis,
		pq.Array(session.Recommendations), pq.Array(session.RedFlags), session.FollowUpRequired,
		session.StartTime, session.EndTime, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrSessionExists
		}
		return fmt.Errorf("postgres CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(session *domain.Session) error {
	res, err := s.db.Exec(
		`UPDATE sessions
		 SET status = $2, chief_complaint = $3, risk_score = $4, priority_level = $5,
		     ai_analysis = $6, recommendations = $7, red_flags = $8, follow_up_required = $9,
		     end_time = $10, updated_at = $11
		 WHERE id = $1`,
		string(session.ID), string(session.Status), session.ChiefComplaint, session.RiskScore,
		string(session.Priority), session.AIAnalysis, pq.Array(session.Recommendations),
		pq.Array(session.RedFlags), session.FollowUpRequired, session.EndTime, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres UpdateSession: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *Store) GetSession(id domain.SessionID) (*domain.Session, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, status, chief_complaint, risk_score, priority_level,
		        ai_analysis, recommendations, red_flags, follow_up_required,
		        start_time, end_time, created_at, updated_at
		 FROM sessions WHERE id = $1`, string(id))

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("postgres GetSession: %w", err)
	}
	return session, nil
}

func (s *Store) ListSessionsByUser(userID domain.UserID, limit int) ([]*domain.Session, error) {
	query := `SELECT id, user_id, status, chief_complaint, risk_score, priority_level,
	                 ai_analysis, recommendations, red_flags, follow_up_required,
	                 start_time, end_time, created_at, updated_at
	          FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{string(userID)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres ListSessionsByUser: %w", err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres ListSessionsByUser scan: %w", err)
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		session         domain.Session
		id, userID      string
		status, prio    string
		recommendations pq.StringArray
		redFlags        pq.StringArray
		endTime         sql.NullTime
	)

	err := row.Scan(&id, &userID, &status, &session.ChiefComplaint, &session.RiskScore, &prio,
		&session.AIAnalysis, &recommendations, &redFlags, &session.FollowUpRequired,
		&session.StartTime, &endTime, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}

	session.ID = domain.SessionID(id)
	session.UserID = domain.UserID(userID)
	session.Status = domain.SessionStatus(status)
	session.Priority = domain.Priority(prio)
	session.Recommendations = recommendations
	session.RedFlags = redFlags
	if endTime.Valid {
		t := endTime.Time
		session.EndTime = &t
	}
	return &session, nil
}

// MessageStore implementation

func (s *Store) AppendMessage(msg *domain.ChatMessage) error {
	var confidence sql.NullFloat64
	if msg.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *msg.Confidence, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO messages (id, session_id, role, message_type, content, confidence_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(msg.ID), string(msg.SessionID), string(msg.Role), string(msg.Type),
		msg.Content, confidence, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]*domain.ChatMessage, error) {
	// Newest `limit` messages, returned in chronological order.
	query := `SELECT id, session_id, role, message_type, content, confidence_score, created_at
	          FROM messages WHERE session_id = $1 ORDER BY created_at ASC`
	args := []any{string(sessionID)}
	if limit > 0 {
		query = `SELECT id, session_id, role, message_type, content, confidence_score, created_at
		         FROM (
		             SELECT id, session_id, role, message_type, content, confidence_score, created_at
		             FROM messages WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2
		         ) newest ORDER BY created_at ASC`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres GetMessagesBySession: %w", err)
	}
	defer rows.Close()

	var out []*domain.ChatMessage
	for rows.Next() {
		var (
			msg        domain.ChatMessage
			id, sid    string
			role, typ  string
			confidence sql.NullFloat64
		)
		if err := rows.Scan(&id, &sid, &role, &typ, &msg.Content, &confidence, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres GetMessagesBySession scan: %w", err)
		}
		msg.ID = domain.MessageID(id)
		msg.SessionID = domain.SessionID(sid)
		msg.Role = domain.Role(role)
		msg.Type = domain.MessageType(typ)
		if confidence.Valid {
			c := confidence.Float64
			msg.Confidence = &c
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

// UserStore implementation

func (s *Store) CreateUser(user *domain.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, full_name, date_of_birth, gender, medical_history,
		                    allergies, medications, emergency_contact_name, emergency_contact_phone,
		                    emergency_contact_relationship, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		string(user.ID), user.Email, user.FullName, user.DateOfBirth, user.Gender,
		pq.Array(user.MedicalHistory), pq.Array(user.Allergies), pq.Array(user.Medications),
		user.EmergencyContact.Name, user.EmergencyContact.Phone, user.EmergencyContact.Relationship,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrUserExists
		}
		return fmt.Errorf("postgres CreateUser: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(user *domain.User) error {
	res, err := s.db.Exec(
		`UPDATE users
		 SET email = $2, full_name = $3, date_of_birth = $4, gender = $5, medical_history = $6,
		     allergies = $7, medications = $8, emergency_contact_name = $9,
		     emergency_contact_phone = $10, emergency_contact_relationship = $11, updated_at = $12
		 WHERE id = $1`,
		string(user.ID), user.Email, user.FullName, user.DateOfBirth, user.Gender,
		pq.Array(user.MedicalHistory), pq.Array(user.Allergies), pq.Array(user.Medications),
		user.EmergencyContact.Name, user.EmergencyContact.Phone, user.EmergencyContact.Relationship,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres UpdateUser: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) GetUser(id domain.UserID) (*domain.User, error) {
	var (
		user            domain.User
		uid             string
		dob             sql.NullTime
		medicalHistory  pq.StringArray
		allergies       pq.StringArray
		medications     pq.StringArray
	)

	err := s.db.QueryRow(
		`SELECT id, email, full_name, date_of_birth, gender, medical_history, allergies,
		        medications, emergency_contact_name, emergency_contact_phone,
		        emergency_contact_relationship, created_at, updated_at
		 FROM users WHERE id = $1`, string(id),
	).Scan(&uid, &user.Email, &user.FullName, &dob, &user.Gender, &medicalHistory, &allergies,
		&medications, &user.EmergencyContact.Name, &user.EmergencyContact.Phone,
		&user.EmergencyContact.Relationship, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres GetUser: %w", err)
	}

	user.ID = domain.UserID(uid)
	if dob.Valid {
		user.DateOfBirth = dob.Time
	}
	user.MedicalHistory = medicalHistory
	user.Allergies = allergies
	user.Medications = medications
	return &user, nil
}
