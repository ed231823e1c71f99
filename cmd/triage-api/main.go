package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	httpadapter "github.com/healthai/triage-agent/internal/adapters/http"
	"github.com/healthai/triage-agent/internal/adapters/llm"
	firestorestore "github.com/healthai/triage-agent/internal/adapters/storage/firestore"
	memstore "github.com/healthai/triage-agent/internal/adapters/storage/memory"
	pgstore "github.com/healthai/triage-agent/internal/adapters/storage/postgres"
	"github.com/healthai/triage-agent/internal/app/assessment"
	"github.com/healthai/triage-agent/internal/config"
	"github.com/healthai/triage-agent/internal/domain"
	"github.com/healthai/triage-agent/internal/triage"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// Provider: mock or the highest-priority configured backend.
	var provider domain.Provider

	opts := providerOptions(cfg)

	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK provider")
		provider = llm.NewMockProvider()
	} else {
		p, err := llm.Select(ctx, cfg.ProviderPriority, opts)
		switch {
		case errors.Is(err, llm.ErrNoProviderConfigured):
			// Keyword fallback still produces assessments; run degraded.
			log.Println("[LLM] No provider configured, running on keyword fallback only")
		case err != nil:
			log.Fatalf("error initializing LLM provider: %v", err)
		default:
			log.Printf("[LLM] Using %s provider", p.Name())
			provider = p
		}
	}

	// Storage: Firestore, Postgres or Memory.
	var (
		sessionStore domain.SessionStore
		messageStore domain.MessageStore
		userStore    domain.UserStore
	)

	switch cfg.StorageBackend {
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Fatal("TRIAGE_GCP_PROJECT is required for Firestore storage backend")
		}

		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 3 interfaces
		sessionStore = fsStore
		messageStore = fsStore
		userStore = fsStore

	case "postgres":
		if cfg.PostgresURL == "" {
			log.Fatal("TRIAGE_POSTGRES_URL is required for Postgres storage backend")
		}

		log.Println("[STORE] Using Postgres storage")
		pg, err := pgstore.NewStore(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("error initializing Postgres store: %v", err)
		}

		sessionStore = pg
		messageStore = pg
		userStore = pg

	default:
		log.Println("[STORE] Using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		messageStore = memstore.NewMessageStore()

		users := memstore.NewUserStore()
		seedDemoUser(users)
		userStore = users
	}

	classifier := triage.New(
		provider,
		triage.NewKeywordClassifier(cfg.EmergencyKeywords, cfg.UrgentKeywords),
		triage.NewPromptBuilder(cfg.HistoryTokenBudget),
		cfg.ConfidenceThreshold,
	)

	svc := assessment.NewService(classifier, sessionStore, messageStore, userStore)

	handler := httpadapter.NewServer(svc, llm.Available(cfg.ProviderPriority, opts))

	addr := ":" + cfg.Port
	log.Println("Triage API listening on port:", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}

func providerOptions(cfg *config.Config) map[string]llm.Options {
	opts := make(map[string]llm.Options, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		opts[name] = llm.Options{
			APIKey:  pc.APIKey,
			BaseURL: pc.BaseURL,
			Model:   pc.Model,
			Timeout: pc.Timeout,
		}
	}
	return opts
}

// seedDemoUser gives the in-memory backend a known user so the API is usable
// out of the box.
func seedDemoUser(users domain.UserStore) {
	_ = users.CreateUser(&domain.User{
		ID:          "demo-user",
		Email:       "demo@example.com",
		FullName:    "Demo User",
		DateOfBirth: time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC),
		Gender:      "female",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
}
