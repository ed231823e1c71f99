package llm

import "context"

// MockProvider is a scripted provider for tests and local development.
// When Reply is empty it echoes a fixed acknowledgement.
type MockProvider struct {
	Reply string
	Err   error

	// Calls records every prompt passed to Generate.
	Calls []string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply == "" {
		return "Thank you for describing your symptoms. A clinician should review them.", nil
	}
	return m.Reply, nil
}
