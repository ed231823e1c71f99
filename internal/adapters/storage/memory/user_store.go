package memory

import (
	"sync"

	"github.com/healthai/triage-agent/internal/domain"
)

// UserStore keeps patient profiles in memory.
type UserStore struct {
	mu    sync.RWMutex
	users map[domain.UserID]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[domain.UserID]*domain.User),
	}
}

func (s *UserStore) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return domain.ErrUserExists
	}

	s.users[user.ID] = user
	return nil
}

func (s *UserStore) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; !exists {
		return domain.ErrUserNotFound
	}

	s.users[user.ID] = user
	return nil
}

func (s *UserStore) GetUser(id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	return user, nil
}
