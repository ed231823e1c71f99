package domain

import "context"

// Provider defines how the classifier talks to a text-generation backend.
// One outbound call, one raw text reply. Retries and fallback belong to the
// caller, not the adapter.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
	ListSessionsByUser(userID UserID, limit int) ([]*Session, error)
}

// MessageStore defines the append-only message timeline per session.
type MessageStore interface {
	AppendMessage(msg *ChatMessage) error
	GetMessagesBySession(sessionID SessionID, limit int) ([]*ChatMessage, error)
}

// UserStore defines patient profile persistence.
type UserStore interface {
	CreateUser(user *User) error
	UpdateUser(user *User) error
	GetUser(id UserID) (*User, error)
}
