package memory_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/healthai/triage-agent/internal/adapters/storage/memory"
	"github.com/healthai/triage-agent/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := memory.NewSessionStore()

	session := &domain.Session{ID: "s1", UserID: "u1", Status: domain.StatusActive}
	if err := store.CreateSession(session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.CreateSession(session); !errors.Is(err, domain.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}

	session.Status = domain.StatusCompleted
	if err := store.UpdateSession(session); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	got, err := store.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}

	if _, err := store.GetSession("missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.UpdateSession(&domain.Session{ID: "missing"}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestListSessionsByUser(t *testing.T) {
	store := memory.NewSessionStore()

	for i := 0; i < 3; i++ {
		id := domain.SessionID(fmt.Sprintf("s%d", i))
		if err := store.CreateSession(&domain.Session{ID: id, UserID: "u1"}); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}
	if err := store.CreateSession(&domain.Session{ID: "other", UserID: "u2"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sessions, err := store.ListSessionsByUser("u1", 0)
	if err != nil {
		t.Fatalf("ListSessionsByUser failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}

	sessions, err = store.ListSessionsByUser("u1", 2)
	if err != nil {
		t.Fatalf("ListSessionsByUser failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected the limit to apply, got %d", len(sessions))
	}
}

func TestMessageStoreNewestWindow(t *testing.T) {
	store := memory.NewMessageStore()

	for i := 0; i < 5; i++ {
		msg := &domain.ChatMessage{
			ID:        domain.MessageID(fmt.Sprintf("m%d", i)),
			SessionID: "s1",
			Content:   fmt.Sprintf("message %d", i),
		}
		if err := store.AppendMessage(msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	msgs, err := store.GetMessagesBySession("s1", 0)
	if err != nil {
		t.Fatalf("GetMessagesBySession failed: %v", err)
	}
	if len(msgs) != 5 {
		t.Fatalf("expected all 5 messages, got %d", len(msgs))
	}

	msgs, err = store.GetMessagesBySession("s1", 2)
	if err != nil {
		t.Fatalf("GetMessagesBySession failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	// Newest messages, still in chronological order.
	if msgs[0].Content != "message 3" || msgs[1].Content != "message 4" {
		t.Fatalf("expected the newest window, got %s / %s", msgs[0].Content, msgs[1].Content)
	}

	if msgs, _ := store.GetMessagesBySession("empty", 0); len(msgs) != 0 {
		t.Fatalf("expected no messages for unknown session, got %d", len(msgs))
	}
}

func TestMessageStoreResultDoesNotAliasStore(t *testing.T) {
	store := memory.NewMessageStore()

	for i := 0; i < 3; i++ {
		msg := &domain.ChatMessage{
			ID:        domain.MessageID(fmt.Sprintf("m%d", i)),
			SessionID: "s1",
			Content:   fmt.Sprintf("message %d", i),
		}
		if err := store.AppendMessage(msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	retrieved, err := store.GetMessagesBySession("s1", 0)
	if err != nil {
		t.Fatalf("GetMessagesBySession failed: %v", err)
	}

	if err := store.AppendMessage(&domain.ChatMessage{
		ID:        "m3",
		SessionID: "s1",
		Content:   "message 3",
	}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	// Growing the retrieved slice must not write into the store's backing
	// array.
	retrieved = append(retrieved, &domain.ChatMessage{ID: "rogue", SessionID: "s1"})

	msgs, err := store.GetMessagesBySession("s1", 0)
	if err != nil {
		t.Fatalf("GetMessagesBySession failed: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[3].ID != "m3" {
		t.Fatalf("expected m3 as the newest message, got %s", msgs[3].ID)
	}
}

func TestUserStoreLifecycle(t *testing.T) {
	store := memory.NewUserStore()

	user := &domain.User{ID: "u1", Email: "u1@example.com"}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := store.CreateUser(user); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	user.Email = "new@example.com"
	if err := store.UpdateUser(user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	got, err := store.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != "new@example.com" {
		t.Fatalf("expected updated email, got %s", got.Email)
	}

	if _, err := store.GetUser("missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := store.UpdateUser(&domain.User{ID: "missing"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
