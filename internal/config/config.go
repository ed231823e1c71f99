package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names recognized in the priority list.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
	ProviderCustom    = "custom"
)

// DefaultProviderPriority is the order of preference among configured
// providers: the first one with a usable credential wins.
var DefaultProviderPriority = []string{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGoogle,
	ProviderOllama,
	ProviderCustom,
}

// ProviderConfig holds the per-backend connection settings.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Config struct {
	Port string

	// Providers is keyed by provider name (openai, anthropic, ...).
	Providers map[string]ProviderConfig

	// ProviderPriority is consulted in order when selecting a backend.
	ProviderPriority []string

	// UseMockLLM forces the scripted mock provider (local development).
	UseMockLLM bool

	// Keyword lists for the deterministic fallback classifier. Empty means
	// use the classifier's built-in defaults.
	EmergencyKeywords []string
	UrgentKeywords    []string

	// ConfidenceThreshold is the escalation cutoff: results below it that are
	// not already emergencies are raised to at least urgent.
	ConfidenceThreshold float64

	// HistoryTokenBudget caps how much prior conversation is folded into the
	// assessment prompt.
	HistoryTokenBudget int

	StorageBackend string // "memory", "firestore" or "postgres"
	GCPProjectID   string
	PostgresURL    string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getListEnv parses a comma-separated list, trimming blanks.
func getListEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func providerConfig(prefix, defaultModel, defaultBaseURL string) ProviderConfig {
	return ProviderConfig{
		APIKey:  getEnv("TRIAGE_"+prefix+"_API_KEY", ""),
		BaseURL: getEnv("TRIAGE_"+prefix+"_BASE_URL", defaultBaseURL),
		Model:   getEnv("TRIAGE_"+prefix+"_MODEL", defaultModel),
		Timeout: getDurationEnv("TRIAGE_"+prefix+"_TIMEOUT", 30*time.Second),
	}
}

// Load reads all env vars and builds the config. An optional .env file is
// consulted first; real environment variables always win.
func Load() *Config {
	_ = LoadEnvFile(".env")

	priority := getListEnv("TRIAGE_PROVIDER_PRIORITY")
	if len(priority) == 0 {
		priority = DefaultProviderPriority
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		Providers: map[string]ProviderConfig{
			ProviderOpenAI:    providerConfig("OPENAI", "gpt-3.5-turbo", ""),
			ProviderAnthropic: providerConfig("ANTHROPIC", "claude-3-haiku-20240307", ""),
			ProviderGoogle:    providerConfig("GOOGLE", "gemini-pro", ""),
			ProviderOllama:    providerConfig("OLLAMA", "llama3.2:3b", ""),
			ProviderCustom:    providerConfig("CUSTOM", "default", ""),
		},
		ProviderPriority: priority,
		UseMockLLM:       getBoolEnv("TRIAGE_USE_MOCK_LLM", false),

		EmergencyKeywords: getListEnv("TRIAGE_EMERGENCY_KEYWORDS"),
		UrgentKeywords:    getListEnv("TRIAGE_URGENT_KEYWORDS"),

		ConfidenceThreshold: getFloatEnv("TRIAGE_CONFIDENCE_THRESHOLD", 0.70),
		HistoryTokenBudget:  getIntEnv("TRIAGE_HISTORY_TOKEN_BUDGET", 1500),

		StorageBackend: getEnv("TRIAGE_STORAGE_BACKEND", "memory"),
		GCPProjectID:   getEnv("TRIAGE_GCP_PROJECT", ""),
		PostgresURL:    getEnv("TRIAGE_POSTGRES_URL", ""),
	}
}
