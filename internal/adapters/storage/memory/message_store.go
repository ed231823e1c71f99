package memory

import (
	"sync"

	"github.com/healthai/triage-agent/internal/domain"
)

// MessageStore keeps per-session message timelines in memory.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.SessionID][]*domain.ChatMessage
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.SessionID][]*domain.ChatMessage),
	}
}

func (s *MessageStore) AppendMessage(msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

// GetMessagesBySession returns the newest `limit` messages in chronological
// order, or all of them when limit <= 0.
func (s *MessageStore) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]*domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	// Copy so appends on the returned slice cannot alias store writes.
	out := make([]*domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
